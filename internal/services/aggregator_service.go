package services

import (
	"context"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rajramo61/aem-core-wcm-components/internal/clientlibs"
	"github.com/rajramo61/aem-core-wcm-components/internal/models"
	"github.com/rajramo61/aem-core-wcm-components/internal/store"
)

// clientlibSubservice names the scoped resolver used for category lookup.
const clientlibSubservice = "component-clientlib-service"

// AggregatorService concatenates the rendered output of client libraries
// selected by category. All failure modes are soft: misuse yields an
// empty string and a log line, never an error.
type AggregatorService struct {
	manager           clientlibs.LibraryManager
	resolvers         store.ResolverFactory
	resourceTypeRegex string
}

type AggregatorServiceDeps struct {
	Manager   clientlibs.LibraryManager
	Resolvers store.ResolverFactory
	// ResourceTypeRegex validates which resource types are eligible for
	// aggregation. Exposed verbatim to template callers.
	ResourceTypeRegex string
}

func NewAggregatorService(deps AggregatorServiceDeps) *AggregatorService {
	return &AggregatorService{
		manager:           deps.Manager,
		resolvers:         deps.Resolvers,
		resourceTypeRegex: deps.ResourceTypeRegex,
	}
}

// GetClientLibOutput returns the aggregated content of the given kind from
// a comma-delimited list of clientlib categories.
func (s *AggregatorService) GetClientLibOutput(ctx context.Context, categoryCsv, kindName string) string {
	if strings.TrimSpace(categoryCsv) == "" {
		return ""
	}
	kind, ok := models.KindFromName(kindName)
	if !ok {
		log.Errorf("No client libraries of kind '%s'.", kindName)
		return ""
	}

	categories := splitCsv(categoryCsv)
	libraries, err := s.manager.Libraries(ctx, categories, kind)
	if err != nil {
		log.Errorf("Error resolving client libraries for categories '%s': %v", categoryCsv, err)
		return ""
	}

	minified := s.manager.MinifyEnabled()
	var output strings.Builder
	for _, lib := range libraries {
		library, err := s.manager.Library(ctx, kind, lib.Path)
		if err != nil {
			continue
		}
		reader, err := library.Reader(ctx, minified)
		if err != nil {
			log.Errorf("Error getting content stream from clientlib with path '%s'.", lib.Path)
			continue
		}
		if _, err := io.Copy(&output, reader); err != nil {
			log.Errorf("Error reading content stream from clientlib with path '%s'.", lib.Path)
			continue
		}
	}
	return output.String()
}

// GetClientLibOutputForTypes aggregates the given categories plus every
// category declared by the clientlib resource of each resource type. For
// each resource type the clientlib resource is resolved at
// resourceType/primaryPath, falling back to resourceType/fallbackPath;
// types resolving at neither are skipped.
func (s *AggregatorService) GetClientLibOutputForTypes(ctx context.Context, categoryCsv, kindName string,
	resourceTypes []string, primaryPath, fallbackPath string) string {

	primaryBlank := strings.TrimSpace(primaryPath) == ""
	fallbackBlank := strings.TrimSpace(fallbackPath) == ""
	if primaryBlank && fallbackBlank {
		log.Debug("Resource type clientlib aggregator must have a path value.")
		return ""
	}

	var categories []string
	if strings.TrimSpace(categoryCsv) != "" {
		categories = splitCsv(categoryCsv)
	}

	categories = append(categories, s.lookupTypeCategories(ctx, resourceTypes, primaryPath, fallbackPath, primaryBlank, fallbackBlank)...)

	return s.GetClientLibOutput(ctx, strings.Join(categories, ","), kindName)
}

// lookupTypeCategories resolves the clientlib resource of each resource
// type and collects its declared categories. The resolver's connection is
// released before the caller aggregates, so aggregation never contends
// with the lookup phase for a store connection.
func (s *AggregatorService) lookupTypeCategories(ctx context.Context, resourceTypes []string,
	primaryPath, fallbackPath string, primaryBlank, fallbackBlank bool) []string {

	resolver, err := s.resolvers.ServiceResolver(ctx, clientlibSubservice)
	if err != nil {
		// Lookup phase is skipped; the caller aggregates what it has.
		log.Error("Unable to acquire the service resource resolver.")
		return nil
	}
	defer resolver.Close()

	var categories []string
	for _, resourceType := range resourceTypes {
		var clientlib *models.Resource
		if !primaryBlank {
			clientlib = s.resolve(ctx, resolver, resourceType+"/"+primaryPath)
		}
		if clientlib == nil && !fallbackBlank {
			clientlib = s.resolve(ctx, resolver, resourceType+"/"+fallbackPath)
		}
		if clientlib == nil {
			continue
		}
		categories = append(categories, clientlib.StringSlice(models.PropCategories)...)
	}
	return categories
}

// ResourceTypeRegex returns the configured regex used by callers to
// validate resource types before aggregation.
func (s *AggregatorService) ResourceTypeRegex() string {
	return s.resourceTypeRegex
}

func (s *AggregatorService) resolve(ctx context.Context, resolver store.ResourceResolver, path string) *models.Resource {
	res, err := resolver.Resolve(ctx, path)
	if err != nil {
		if err != store.ErrNotFound {
			log.Errorf("Error resolving clientlib resource at '%s': %v", path, err)
		}
		return nil
	}
	return res
}

func splitCsv(csv string) []string {
	parts := strings.Split(csv, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
