package nestegg

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	keySize = 32 // AES-256
	ivSize  = 16 // 128-bit IV, one fresh random IV per write
	tagSize = 16 // 128-bit authentication tag
)

// Config is the explicit construction-time configuration of a Vault. There
// is no process-wide configuration.
type Config struct {
	StatePath  string         // path of the encrypted state blob
	KeyPath    string         // path of the hex-encoded key file
	HistoryCap int            // 0 means DefaultHistoryCap
	Log        *logrus.Logger // nil means logrus.StandardLogger()
}

// Vault is the encrypted store. Every public operation loads the full
// decrypted state, mutates an in-memory copy, and persists it back; the
// per-vault mutex serializes concurrent callers.
type Vault struct {
	cfg Config
	key []byte
	log *logrus.Logger
	mu  sync.Mutex
}

// Open creates a vault over the configured paths, loading the key file or
// generating a fresh 256-bit key with owner-only permissions on first use.
// The key is never rotated.
func Open(cfg Config) (*Vault, error) {
	if cfg.StatePath == "" || cfg.KeyPath == "" {
		return nil, errors.New("vault config requires both a state path and a key path")
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	key, err := loadOrCreateKey(cfg.KeyPath, log)
	if err != nil {
		return nil, err
	}
	return &Vault{cfg: cfg, key: key, log: log}, nil
}

func loadOrCreateKey(path string, log *logrus.Logger) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		key := make([]byte, keySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("could not generate encryption key: %w", err)
		}
		if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0600); err != nil {
			return nil, fmt.Errorf("could not write key file %q: %w", path, err)
		}
		log.WithField("path", path).Info("generated new vault encryption key")
		return key, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read key file %q: %w", path, err)
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("key file %q is not valid hex: %w", path, err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("key file %q holds a %d-byte key, want %d", path, len(key), keySize)
	}
	return key, nil
}

// Load decrypts and deserializes the state. A missing state file yields an
// empty state (first run); an authentication failure (corruption, tamper,
// wrong key) fails loudly. See LoadOrDefault for the sanctioned fallback.
func (v *Vault) Load() (*State, error) {
	blob, err := os.ReadFile(v.cfg.StatePath)
	if errors.Is(err, fs.ErrNotExist) {
		st := NewState()
		st.History.SetCap(v.cfg.HistoryCap)
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read state file %q: %w", v.cfg.StatePath, err)
	}

	payload, err := v.decrypt(strings.TrimSpace(string(blob)))
	if err != nil {
		return nil, fmt.Errorf("could not decrypt state file %q: %w", v.cfg.StatePath, err)
	}
	st, err := decodeState(payload)
	if err != nil {
		return nil, err
	}
	st.History.SetCap(v.cfg.HistoryCap)
	return st, nil
}

// LoadOrDefault substitutes an empty state when Load fails. The substitution
// risks masking real data loss, so it is logged at error severity; it is
// never silent and callers must opt into it explicitly.
func (v *Vault) LoadOrDefault() *State {
	st, err := v.Load()
	if err != nil {
		v.log.WithError(err).WithField("path", v.cfg.StatePath).
			Error("state could not be decrypted, substituting an empty state; possible data loss")
		st = NewState()
		st.History.SetCap(v.cfg.HistoryCap)
	}
	return st
}

// Save serializes, encrypts and writes the full state blob. The write is
// atomic (write-temp-then-rename) so a crash never leaves a partial file.
func (v *Vault) Save(st *State) error {
	payload, err := encodeState(st)
	if err != nil {
		return err
	}
	blob, err := v.encrypt(payload)
	if err != nil {
		return err
	}

	tmp := v.cfg.StatePath + ".tmp"
	if err := os.WriteFile(tmp, []byte(blob), 0600); err != nil {
		return fmt.Errorf("could not write state file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, v.cfg.StatePath); err != nil {
		return fmt.Errorf("could not replace state file %q: %w", v.cfg.StatePath, err)
	}
	return nil
}

// Update runs one load, mutate, persist cycle under the vault mutex. If fn
// returns an error the mutation is discarded and nothing is persisted.
func (v *Vault) Update(fn func(*State) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	st, err := v.Load()
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return v.Save(st)
}

// View runs fn on a freshly loaded state without persisting it.
func (v *Vault) View(fn func(*State) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	st, err := v.Load()
	if err != nil {
		return err
	}
	return fn(st)
}

// encrypt seals the payload as `iv:authTag:ciphertext` in hex.
func (v *Vault) encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("could not create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return "", fmt.Errorf("could not create GCM: %w", err)
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("could not generate IV: %w", err)
	}

	sealed := gcm.Seal(nil, iv, plaintext, nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext), nil
}

// decrypt opens an `iv:authTag:ciphertext` hex blob.
func (v *Vault) decrypt(blob string) ([]byte, error) {
	parts := strings.Split(blob, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed blob: want iv:authTag:ciphertext, got %d parts", len(parts))
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("malformed IV: %w", err)
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed auth tag: %w", err)
	}
	ciphertext, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("malformed ciphertext: %w", err)
	}
	if len(iv) != ivSize || len(tag) != tagSize {
		return nil, fmt.Errorf("malformed blob: IV is %d bytes and tag is %d bytes", len(iv), len(tag))
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, fmt.Errorf("could not create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("could not create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return plaintext, nil
}
