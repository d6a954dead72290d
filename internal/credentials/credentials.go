package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	secretSize = 32
	keySize    = 32
	iterations = 100000
)

// Credentials are read on startup and written only when the user opts
// in to persistence.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	CSVPath  string `json:"csv_path,omitempty"`
}

// Store persists credentials as JSON with the password encrypted at
// rest. The key is derived from a random local secret, so the file is
// unreadable on its own; this keeps the password out of plain sight,
// it is not a substitute for an OS keychain.
type Store struct {
	path       string
	saltPath   string
	secretPath string
}

func NewStore(dir string) *Store {
	return &Store{
		path:       filepath.Join(dir, "credentials.json"),
		saltPath:   filepath.Join(dir, "salt"),
		secretPath: filepath.Join(dir, "secret"),
	}
}

// DefaultStore keeps credentials under ~/.local/share/logbook.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(home, ".local", "share", "logbook")), nil
}

type fileFormat struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"` // base64 AES-GCM ciphertext
	CSVPath  string `json:"csv_path,omitempty"`
}

// Load reads stored credentials. A missing file is reported with
// os.ErrNotExist so callers can fall back to prompting.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("decoding credentials: %w", err)
	}

	creds := &Credentials{Email: ff.Email, CSVPath: ff.CSVPath}
	if ff.Password != "" {
		key, err := s.key()
		if err != nil {
			return nil, err
		}
		pw, err := decrypt(key, ff.Password)
		if err != nil {
			return nil, fmt.Errorf("decrypting password: %w", err)
		}
		creds.Password = pw
	}
	return creds, nil
}

// Save writes credentials, encrypting the password.
func (s *Store) Save(c Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}

	ff := fileFormat{Email: c.Email, CSVPath: c.CSVPath}
	if c.Password != "" {
		key, err := s.key()
		if err != nil {
			return err
		}
		enc, err := encrypt(key, c.Password)
		if err != nil {
			return fmt.Errorf("encrypting password: %w", err)
		}
		ff.Password = enc
	}

	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes stored credentials and key material.
func (s *Store) Clear() error {
	for _, p := range []string{s.path, s.saltPath, s.secretPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// key derives the AES key from the local secret and salt, creating
// both on first use.
func (s *Store) key() ([]byte, error) {
	secret, err := s.readOrCreate(s.secretPath, secretSize)
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	salt, err := s.readOrCreate(s.saltPath, saltSize)
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return pbkdf2.Key(secret, salt, iterations, keySize, sha256.New), nil
}

func (s *Store) readOrCreate(path string, size int) ([]byte, error) {
	if b, err := os.ReadFile(path); err == nil && len(b) == size {
		return b, nil
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return nil, err
	}
	return b, nil
}

func encrypt(key []byte, plaintext string) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decrypt(key []byte, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
