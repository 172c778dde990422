// Package store persists cumulative focus time per identity as a JSON object
// of whole seconds. Saves replace the file atomically so concurrent readers
// never observe a partial document.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/procuptime/procuptime/internal/logging"
	"github.com/sirupsen/logrus"
)

// State maps an identity (process display name) to cumulative seconds of focus.
type State map[string]uint64

// Clone returns an independent copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Total returns the sum of all uptimes, saturating at math.MaxUint64.
func (s State) Total() uint64 {
	var total uint64
	for _, v := range s {
		total = AddSeconds(total, v)
	}
	return total
}

// AddSeconds returns a+b, saturating at math.MaxUint64 instead of wrapping.
func AddSeconds(a, b uint64) uint64 {
	if b > math.MaxUint64-a {
		return math.MaxUint64
	}
	return a + b
}

// FileStore reads and writes State at a fixed path.
type FileStore struct {
	path   string
	now    func() time.Time
	logger *logrus.Entry
}

// New creates a FileStore for path.
func New(path string) *FileStore {
	return &FileStore{
		path:   path,
		now:    time.Now,
		logger: logging.NewLogger("store"),
	}
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load returns the persisted state. A missing, empty or corrupt file yields
// an empty state; corrupt contents are moved aside to
// <path>.corrupt-<timestamp> so earlier backups are never overwritten. Any
// other read failure is returned, since saving over a file that exists but
// cannot be read would destroy its history.
func (fs *FileStore) Load() (State, error) {
	state, err := Read(fs.path)
	if err == nil {
		fs.logger.WithField("identities", len(state)).Debugf("Loaded state from %s", fs.path)
		return state, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return make(State), nil
	}
	if errors.Cause(err) != errCorrupt {
		return nil, err
	}

	fs.logger.WithError(err).Warnf("State file %s is corrupt, starting from empty state", fs.path)
	backup := fs.CorruptBackupPath()
	if renameErr := os.Rename(fs.path, backup); renameErr != nil {
		fs.logger.WithError(renameErr).Warn("Failed to move corrupt state file aside")
	} else {
		fs.logger.Warnf("Corrupt state file preserved at %s", backup)
	}
	return make(State), nil
}

// CorruptBackupPath returns a fresh path for quarantining the state file.
func (fs *FileStore) CorruptBackupPath() string {
	base := fmt.Sprintf("%s.corrupt-%s", fs.path, fs.now().UTC().Format("20060102T150405"))
	backup := base
	for i := 1; ; i++ {
		if _, err := os.Lstat(backup); err != nil {
			return backup
		}
		backup = fmt.Sprintf("%s.%d", base, i)
	}
}

// CorruptBackups lists quarantined copies of the state file at path.
func CorruptBackups(path string) ([]string, error) {
	return filepath.Glob(path + ".corrupt-*")
}

// Save serializes the whole state and atomically replaces the file.
func (fs *FileStore) Save(state State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create state directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fs.path)+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary state file")
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Wrap(err, "failed to write state file")
	}
	if err := tmp.Sync(); err != nil {
		return errors.Wrap(err, "failed to sync state file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close state file")
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return errors.Wrap(err, "failed to set state file permissions")
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", fs.path)
	}
	committed = true

	return nil
}

var errCorrupt = errors.New("corrupt state file")

// Read parses the state file at path without any recovery. Missing files
// return an error satisfying errors.Is(err, os.ErrNotExist); empty files
// return an empty state.
func Read(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read state file")
	}
	return Decode(data)
}

// Decode parses a state document. Values must be non-negative integers.
func Decode(data []byte) (State, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return make(State), nil
	}

	var raw map[string]uint64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errCorrupt, err.Error())
	}

	state := make(State, len(raw))
	for name, seconds := range raw {
		if name == "" {
			continue
		}
		state[name] = seconds
	}
	return state, nil
}

// Encode renders the state as indented JSON with sorted keys.
func Encode(state State) ([]byte, error) {
	if state == nil {
		state = State{}
	}
	data, err := json.MarshalIndent(map[string]uint64(state), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode state")
	}
	return append(data, '\n'), nil
}
