package tf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// State represents a Terraform state file.
type State struct {
	Version          int        `json:"version"`
	TerraformVersion string     `json:"terraform_version"`
	Resources        []Resource `json:"resources"`
}

// Resource represents a state resource.
type Resource struct {
	Mode      string     `json:"mode"`
	Type      string     `json:"type"`
	Name      string     `json:"name"`
	Provider  string     `json:"provider"`
	Instances []Instance `json:"instances"`
}

// Instance represents a resource instance.
type Instance struct {
	Attributes   map[string]interface{} `json:"attributes"`
	Dependencies []string               `json:"dependencies"`
}

// BackendConfig represents the parsed remote backend configuration.
type BackendConfig struct {
	Type   string
	Bucket string
	Key    string
	Region string
}

// LoadState loads state from a local file, or detects and fetches a
// remote backend when path is a directory.
func LoadState(ctx context.Context, path string) (*State, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return ParseStateFile(path)
	}

	searchDir := path
	if path == "" {
		searchDir = "."
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		searchDir = path
	}

	backend, err := DetectBackend(searchDir)
	if err == nil && backend != nil {
		return FetchRemoteState(ctx, backend)
	}

	return nil, fmt.Errorf("no state file found at '%s' and no remote backend detected", path)
}

// ParseStateFile reads a local state file.
func ParseStateFile(path string) (*State, error) {
	// Refuse to read state that another process holds locked.
	lockPath := fmt.Sprintf("%s.lock.info", path)
	if _, err := os.Stat(lockPath); err == nil {
		return nil, fmt.Errorf("terraform state is locked (lock file found: %s)", lockPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %v", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state JSON: %v", err)
	}

	return &state, nil
}

// DetectBackend scans the directory for HCL files defining a backend.
func DetectBackend(rootDir string) (*BackendConfig, error) {
	parser := hclparse.NewParser()
	var backend *BackendConfig

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".terraform" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(info.Name(), ".tf") {
			return nil
		}

		f, diags := parser.ParseHCLFile(path)
		if diags != nil && diags.HasErrors() {
			// Best effort; skip files that do not parse.
			return nil
		}

		body, ok := f.Body.(*hclsyntax.Body)
		if !ok {
			return nil
		}
		for _, block := range body.Blocks {
			if block.Type != "terraform" {
				continue
			}
			for _, inner := range block.Body.Blocks {
				if inner.Type != "backend" || len(inner.Labels) == 0 || inner.Labels[0] != "s3" {
					continue
				}
				backend = &BackendConfig{Type: "s3"}
				attrs := inner.Body.Attributes
				if val, ok := attrs["bucket"]; ok {
					if v, err := val.Expr.Value(nil); err == nil && v.Type() == cty.String {
						backend.Bucket = v.AsString()
					}
				}
				if val, ok := attrs["key"]; ok {
					if v, err := val.Expr.Value(nil); err == nil && v.Type() == cty.String {
						backend.Key = v.AsString()
					}
				}
				if val, ok := attrs["region"]; ok {
					if v, err := val.Expr.Value(nil); err == nil && v.Type() == cty.String {
						backend.Region = v.AsString()
					}
				}
				return io.EOF // Stop walking.
			}
		}
		return nil
	})

	if err == io.EOF && backend != nil {
		return backend, nil
	}

	return nil, fmt.Errorf("no supported backend found")
}

// FetchRemoteState downloads the state from an S3 backend.
func FetchRemoteState(ctx context.Context, backend *BackendConfig) (*State, error) {
	if backend.Type != "s3" {
		return nil, fmt.Errorf("unsupported backend type: %s", backend.Type)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(backend.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config for backend: %v", err)
	}

	client := s3.NewFromConfig(cfg)

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &backend.Bucket,
		Key:    &backend.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote state: %v", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read state body: %v", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse remote state JSON: %v", err)
	}

	return &state, nil
}
