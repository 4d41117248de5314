package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/daxbuild/internal/log"
)

// CreateManifest creates a run manifest for audit purposes
func CreateManifest(invocationID string, step Step, result *Result) *RunManifest {
	m := &RunManifest{
		Timestamp:    time.Now(),
		InvocationID: invocationID,
		Step:         step.Name,
		Command:      step.Argv(),
		Workdir:      step.Workdir,
		Artifacts:    make(map[string]string),
	}
	if result != nil {
		m.ExitCode = result.ExitCode
		m.Duration = result.Duration.String()
	}
	return m
}

// SaveManifest writes a run manifest to dir and returns the file path
func SaveManifest(manifest *RunManifest, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create manifest directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.json",
		manifest.Timestamp.Format("20060102_150405"),
		shortID(manifest.InvocationID),
		manifest.Step)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	return path, nil
}

// LoadManifest reads a manifest written by SaveManifest
func LoadManifest(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// HashFile computes the BLAKE3 digest of a file as lowercase hex
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// AddArtifact records the digest of path if it exists. Missing artifacts are
// not an error: a failed build legitimately leaves none behind.
func (m *RunManifest) AddArtifact(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	hash, err := HashFile(path)
	if err != nil {
		return err
	}
	m.Artifacts[path] = hash
	return nil
}

// ManifestRecorder wraps an Executor and writes a manifest after every step.
// Failing to write a manifest is logged and never fails the step.
type ManifestRecorder struct {
	Next         Executor
	Dir          string
	InvocationID string
	Artifacts    []string
	Logger       *log.Logger
}

// Run delegates to Next and records the outcome
func (m *ManifestRecorder) Run(ctx context.Context, step Step) (*Result, error) {
	result, err := m.Next.Run(ctx, step)
	if err == nil {
		m.record(CreateManifest(m.InvocationID, step, result))
	}
	return result, err
}

// Launch delegates to Next and records the launch
func (m *ManifestRecorder) Launch(ctx context.Context, step Step) (*Process, error) {
	proc, err := m.Next.Launch(ctx, step)
	if err == nil {
		manifest := CreateManifest(m.InvocationID, step, nil)
		manifest.Detached = true
		m.record(manifest)
	}
	return proc, err
}

func (m *ManifestRecorder) record(manifest *RunManifest) {
	logger := m.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	for _, artifact := range m.Artifacts {
		if err := manifest.AddArtifact(artifact); err != nil {
			logger.WithError(err).Warn("failed to hash artifact", "artifact", artifact)
		}
	}
	path, err := SaveManifest(manifest, m.Dir)
	if err != nil {
		logger.WithError(err).Warn("failed to save manifest", "step", manifest.Step)
		return
	}
	logger.Debug("manifest saved", "path", path)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "local"
	}
	return id
}
