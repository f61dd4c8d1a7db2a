package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SectionListKey returns the cache key for the ordered section list
func (r *CacheKeyStruct) SectionListKey() string {
	return "bank:sections"
}

// SectionQuestionsKey returns the cache key for a section's active questions
func (r *CacheKeyStruct) SectionQuestionsKey(sectionID string) string {
	return fmt.Sprintf("bank:section:%s:active_questions", sectionID)
}

// SectionQuestionsPattern matches every per-section question list
func (r *CacheKeyStruct) SectionQuestionsPattern() string {
	return "bank:section:*:active_questions"
}

var CacheKey = NewCacheKeyStruct()
