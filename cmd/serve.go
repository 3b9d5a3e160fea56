package cmd

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rajramo61/aem-core-wcm-components/internal/apihandlers"
)

var (
	serveAddr string // Listen address
	servePort string // Listen port
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the component HTTP server",
	Long: `Starts an HTTP server that renders component pages behind the AMP
forwarding middleware and delivers aggregated client library output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		router := gin.Default() // Includes logger and recovery middleware
		apihandlers.RegisterRoutes(router, appInstance)

		// Reload client library manifests while serving.
		if appInstance.Provider != nil {
			go func() {
				if err := appInstance.Provider.Watch(cmd.Context()); err != nil {
					log.Printf("WARN: Client library watcher stopped: %v", err)
				}
			}()
		}

		addr := serveAddr
		if addr == "" {
			addr = appInstance.Config.Server.Addr
		}
		port := servePort
		if port == "" {
			port = appInstance.Config.Server.Port
		}
		listenAddr := fmt.Sprintf("%s:%s", addr, port)
		log.Printf("Starting component server on http://%s", listenAddr)

		if err := router.Run(listenAddr); err != nil {
			log.Printf("ERROR: Failed to run server: %v", err)
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (defaults to server.addr from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (defaults to server.port from config)")
}
