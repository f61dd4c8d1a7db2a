package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SectionQuota is the number of questions a full exam draws from one section.
type SectionQuota struct {
	SectionID string `yaml:"section_id" json:"section_id"`
	Count     int    `yaml:"count" json:"count"`
}

// Quota is an ordered section → count table.
type Quota []SectionQuota

// Total returns the number of questions the quota asks for.
func (q Quota) Total() int {
	total := 0
	for _, sq := range q {
		total += sq.Count
	}
	return total
}

// AsMap returns the quota keyed by section id.
func (q Quota) AsMap() map[string]int {
	m := make(map[string]int, len(q))
	for _, sq := range q {
		m[sq.SectionID] = sq.Count
	}
	return m
}

// ExamPolicy groups the distribution and pass rules of the theory exam.
type ExamPolicy struct {
	FullQuota Quota `yaml:"full_quota"`
	// FullPassMark is an absolute number of correct answers.
	FullPassMark int `yaml:"full_pass_mark"`
	// SectionPassRatio is a fraction of the section's question count.
	SectionPassRatio float64 `yaml:"section_pass_ratio"`
}

// DefaultExamPolicy returns the standard 65-question distribution.
func DefaultExamPolicy() ExamPolicy {
	return ExamPolicy{
		FullQuota: Quota{
			{SectionID: "traffic_safety", Count: 16},
			{SectionID: "traffic_rules", Count: 32},
			{SectionID: "environment", Count: 5},
			{SectionID: "vehicle_knowledge_and_manoeuvring", Count: 7},
			{SectionID: "personal_conditions", Count: 5},
		},
		FullPassMark:     52,
		SectionPassRatio: 0.8,
	}
}

// LoadExamPolicy reads a YAML policy file. Fields absent from the file keep
// their default values. An empty path returns the defaults.
func LoadExamPolicy(path string) (ExamPolicy, error) {
	policy := DefaultExamPolicy()
	if path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ExamPolicy{}, fmt.Errorf("read policy file: %w", err)
	}

	var file ExamPolicy
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return ExamPolicy{}, fmt.Errorf("parse policy file: %w", err)
	}

	if len(file.FullQuota) > 0 {
		policy.FullQuota = file.FullQuota
	}
	if file.FullPassMark != 0 {
		policy.FullPassMark = file.FullPassMark
	}
	if file.SectionPassRatio != 0 {
		policy.SectionPassRatio = file.SectionPassRatio
	}

	if err := policy.Validate(); err != nil {
		return ExamPolicy{}, err
	}
	return policy, nil
}

// Validate checks the policy for configurations that cannot be scored.
func (p ExamPolicy) Validate() error {
	if len(p.FullQuota) == 0 {
		return errors.New("full_quota must list at least one section")
	}
	seen := make(map[string]struct{}, len(p.FullQuota))
	for _, sq := range p.FullQuota {
		if sq.SectionID == "" {
			return errors.New("full_quota entry has an empty section_id")
		}
		if sq.Count <= 0 {
			return fmt.Errorf("full_quota count for %q must be positive", sq.SectionID)
		}
		if _, dup := seen[sq.SectionID]; dup {
			return fmt.Errorf("full_quota lists %q more than once", sq.SectionID)
		}
		seen[sq.SectionID] = struct{}{}
	}
	if p.FullPassMark <= 0 || p.FullPassMark > p.FullQuota.Total() {
		return fmt.Errorf("full_pass_mark must be within 1..%d", p.FullQuota.Total())
	}
	if p.SectionPassRatio <= 0 || p.SectionPassRatio > 1 {
		return errors.New("section_pass_ratio must be within (0, 1]")
	}
	return nil
}
