package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for entry documents.
//
// Filenames get the simple analyzer rather than a language analyzer:
// stemming "reports" to "report" would be wrong for exact-name search,
// but we still want case folding and token splitting on punctuation.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	// Name - primary search target.
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// ID - stored but not analyzed.
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	idFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Ext - exact match, facetable.
	extFieldMapping := bleve.NewTextFieldMapping()
	extFieldMapping.Analyzer = keyword.Name
	extFieldMapping.Store = true
	extFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("ext", extFieldMapping)

	// Kind - file or dir filter.
	kindFieldMapping := bleve.NewTextFieldMapping()
	kindFieldMapping.Analyzer = keyword.Name
	kindFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("kind", kindFieldMapping)

	// Hidden flag.
	hiddenFieldMapping := bleve.NewBooleanFieldMapping()
	hiddenFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("hidden", hiddenFieldMapping)

	// Numeric fields for range queries and sorting.
	sizeFieldMapping := bleve.NewNumericFieldMapping()
	sizeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("size", sizeFieldMapping)

	modifiedFieldMapping := bleve.NewNumericFieldMapping()
	modifiedFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("modified", modifiedFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
