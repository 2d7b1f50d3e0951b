package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type PolicyStatus string

const (
	StatusUploaded   PolicyStatus = "uploaded"
	StatusProcessing PolicyStatus = "processing"
	StatusReady      PolicyStatus = "ready"
	StatusFailed     PolicyStatus = "failed"
	StatusDeleted    PolicyStatus = "deleted"
)

// Policy is the registry record for one uploaded policy document. Its ID is
// also the doc_id grouping the document's chunks in the vector index.
type Policy struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Metadata    PolicyMetadata `json:"metadata"`
	Status      PolicyStatus   `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// PolicyMetadata is the fixed, validated set of caller-supplied payload
// fields attached to every indexed chunk. Free-form metadata maps are
// rejected to prevent payload schema drift.
type PolicyMetadata struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

var allowedMetadataKeys = map[string]struct{}{
	"id":          {},
	"name":        {},
	"description": {},
	"keywords":    {},
	"severity":    {},
}

// ParsePolicyMetadata decodes a caller-supplied JSON object into the allowed
// key set. Unknown keys and non-string values are ingestion errors.
func ParsePolicyMetadata(raw string) (PolicyMetadata, error) {
	var meta PolicyMetadata
	if strings.TrimSpace(raw) == "" {
		return meta.withDefaults(), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return PolicyMetadata{}, WrapError(ErrIngestion, "parse metadata", err)
	}
	for key := range fields {
		if _, ok := allowedMetadataKeys[key]; !ok {
			return PolicyMetadata{}, WrapError(ErrIngestion, "parse metadata", fmt.Errorf("unknown metadata key %q (allowed: %s)", key, strings.Join(sortedMetadataKeys(), ", ")))
		}
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return PolicyMetadata{}, WrapError(ErrIngestion, "parse metadata", err)
	}

	meta = meta.withDefaults()
	if err := meta.Validate(); err != nil {
		return PolicyMetadata{}, err
	}
	return meta, nil
}

func (m PolicyMetadata) withDefaults() PolicyMetadata {
	if m.Severity == "" {
		m.Severity = SeverityMedium
	}
	return m
}

func (m PolicyMetadata) Validate() error {
	switch m.Severity {
	case "", SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return nil
	default:
		return WrapError(ErrIngestion, "validate metadata", fmt.Errorf("unknown severity %q", m.Severity))
	}
}

// PayloadFields returns the metadata as flat vector-payload entries. The id
// is omitted; it already travels as doc_id.
func (m PolicyMetadata) PayloadFields() map[string]any {
	out := make(map[string]any, 4)
	if m.Name != "" {
		out["name"] = m.Name
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.Keywords != "" {
		out["keywords"] = m.Keywords
	}
	if m.Severity != "" {
		out["severity"] = m.Severity
	}
	return out
}

func sortedMetadataKeys() []string {
	keys := make([]string, 0, len(allowedMetadataKeys))
	for key := range allowedMetadataKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
