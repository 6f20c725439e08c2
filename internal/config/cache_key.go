package config

import (
	"fmt"
	"net/url"

	"github.com/stemsi/exstem-report/internal/model"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SummariesKey returns the cache key for the summaries of a selection over
// one dataset revision.
func (r *CacheKeyStruct) SummariesKey(datasetVersion string, sel model.Selection) string {
	return fmt.Sprintf("dataset:%s:summaries:%s:%s:%s",
		datasetVersion,
		url.QueryEscape(sel.Student),
		url.QueryEscape(sel.Class),
		url.QueryEscape(sel.Subject),
	)
}

var CacheKey = NewCacheKeyStruct()
