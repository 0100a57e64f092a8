package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/chessclock/internal/codec"
	"github.com/oshokin/chessclock/internal/config"
	"github.com/oshokin/chessclock/internal/domain/clock"
)

// Snapshot is a saved session.
type Snapshot struct {
	// Config is the time control the session was started with.
	Config clock.Config
	// State is the clock state at the moment it was saved.
	State clock.State
	// SavedAt is when the snapshot was written.
	SavedAt time.Time
}

// Repository defines persistence operations for the session snapshot.
type Repository interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
	Delete(ctx context.Context) error
}

// FileRepository persists the snapshot to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) so the file
// matches what the remote-control API sends.
type FileRepository struct {
	// path is the filesystem location of the JSON snapshot file.
	path string
	// mu protects concurrent access to the snapshot file.
	mu sync.Mutex
}

const (
	fieldConfig  = "config"
	fieldState   = "state"
	fieldSavedAt = "saved_at"
)

var (
	// ErrNotFound is returned when the snapshot file does not exist.
	ErrNotFound = errors.New("snapshot not found")
	// errSnapshotIsNotSet is returned when Save receives nil.
	errSnapshotIsNotSet = errors.New("snapshot is not set")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the snapshot from disk.
func (r *FileRepository) Load(_ context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var msg structpb.Struct
	if err = protojson.Unmarshal(contents, &msg); err != nil {
		return nil, fmt.Errorf("decode snapshot file: %w", err)
	}

	return fromProto(&msg)
}

// Save writes the snapshot to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return errSnapshotIsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	marshalOptions := protojson.MarshalOptions{
		EmitUnpopulated: true,
		Multiline:       true,
	}

	data, err := marshalOptions.Marshal(toProto(snapshot))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	return nil
}

// Delete removes the snapshot file. A missing file is not an error.
func (r *FileRepository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot file: %w", err)
	}

	return nil
}

// fromProto converts the stored Struct into a Snapshot.
func fromProto(msg *structpb.Struct) (*Snapshot, error) {
	fields := msg.GetFields()

	cfg, err := codec.ConfigFromStruct(fields[fieldConfig].GetStructValue())
	if err != nil {
		return nil, fmt.Errorf("decode snapshot config: %w", err)
	}

	state, err := codec.StateFromStruct(fields[fieldState].GetStructValue())
	if err != nil {
		return nil, fmt.Errorf("decode snapshot state: %w", err)
	}

	var savedAt time.Time
	if raw := fields[fieldSavedAt].GetStringValue(); raw != "" {
		if savedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, fmt.Errorf("decode snapshot time: %w", err)
		}
	}

	return &Snapshot{
		Config:  cfg,
		State:   state,
		SavedAt: savedAt,
	}, nil
}

// toProto converts a Snapshot into the stored Struct.
func toProto(snapshot *Snapshot) *structpb.Struct {
	savedAt := ""
	if !snapshot.SavedAt.IsZero() {
		savedAt = snapshot.SavedAt.UTC().Format(time.RFC3339Nano)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldConfig:  structpb.NewStructValue(codec.ConfigToStruct(snapshot.Config)),
			fieldState:   structpb.NewStructValue(codec.StateToStruct(snapshot.State)),
			fieldSavedAt: structpb.NewStringValue(savedAt),
		},
	}
}
