package api

import (
	"time"

	"github.com/ssargent/freed/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string
	Strict bool // Default encode policy, overridable per request
}

// FieldInfo describes one field of a schema
type FieldInfo struct {
	Name   string `json:"name"`
	Begin  int    `json:"begin"`
	Size   int    `json:"size"`
	Scale  int    `json:"scale,omitempty"`
	Signed bool   `json:"signed"`
}

// SchemaInfo describes one message kind
type SchemaInfo struct {
	Name   string      `json:"name"`
	Type   string      `json:"type"`
	Length int         `json:"length"`
	Fields []FieldInfo `json:"fields"`
}

// DecodeResponse is returned by the decode endpoint
type DecodeResponse struct {
	Kind          string           `json:"kind"`
	Type          string           `json:"type"`
	Length        int              `json:"length"`
	Fields        codec.Values     `json:"fields"`
	Raw           map[string]int64 `json:"raw,omitempty"`
	ChecksumValid *bool            `json:"checksum_valid,omitempty"`
}

// EncodeResponse is returned by the encode endpoint
type EncodeResponse struct {
	Kind     string   `json:"kind"`
	Frame    string   `json:"frame"`
	Length   int      `json:"length"`
	Degraded []string `json:"degraded,omitempty"`
}

// ChecksumResponse is returned by the checksum endpoint
type ChecksumResponse struct {
	Checksum string `json:"checksum"`
	Value    byte   `json:"value"`
}

// CaptureResponse describes a stored frame
type CaptureResponse struct {
	ID       string          `json:"id"`
	Captured time.Time       `json:"captured"`
	Frame    string          `json:"frame"`
	Decoded  *DecodeResponse `json:"decoded,omitempty"`
}
