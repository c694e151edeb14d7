package token

import (
	"encoding/json"
	"errors"

	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/jrsteele09/go-sales-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrIncompleteCredential = errors.New("credential requires both token and user")

var _ Store = (*KVStore)(nil)

// KVStore is a Store over any KV backend
type KVStore struct {
	kv     KV
	logger zerolog.Logger
}

type KVStoreOption func(*KVStore)

// WithLogger sets the logger used to report malformed stored values
func WithLogger(logger zerolog.Logger) KVStoreOption {
	return func(s *KVStore) {
		s.logger = logger
	}
}

func NewKVStore(kv KV, opts ...KVStoreOption) *KVStore {
	s := &KVStore{
		kv:     kv,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *KVStore) AccessToken() (string, error) {
	tok, _, err := s.kv.Get(KeyAccessToken)
	if err != nil {
		return "", apperrors.Wrapf(storageErr(err), "[token AccessToken] get %s", KeyAccessToken)
	}
	return tok, nil
}

func (s *KVStore) Read() (StoredCredential, error) {
	var cred StoredCredential

	tok, _, err := s.kv.Get(KeyAccessToken)
	if err != nil {
		return cred, apperrors.Wrapf(storageErr(err), "[token Read] get %s", KeyAccessToken)
	}
	cred.Token = tok

	raw, ok, err := s.kv.Get(KeyUser)
	if err != nil {
		return cred, apperrors.Wrapf(storageErr(err), "[token Read] get %s", KeyUser)
	}
	if !ok || raw == "" {
		return cred, nil
	}

	var u users.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		// A cached profile that cannot be decoded counts as missing
		s.logger.Warn().Err(err).Str("key", KeyUser).Msg("discarding malformed cached user")
		return cred, nil
	}
	cred.User = &u
	return cred, nil
}

func (s *KVStore) Write(cred StoredCredential) error {
	if !cred.Complete() {
		return ErrIncompleteCredential
	}

	data, err := json.Marshal(cred.User)
	if err != nil {
		return apperrors.Wrapf(err, "[token Write] marshal user")
	}
	if err := s.kv.Set(KeyAccessToken, cred.Token); err != nil {
		return apperrors.Wrapf(storageErr(err), "[token Write] set %s", KeyAccessToken)
	}
	if err := s.kv.Set(KeyUser, string(data)); err != nil {
		// Never leave a token behind without its user
		_ = s.kv.Delete(KeyAccessToken)
		return apperrors.Wrapf(storageErr(err), "[token Write] set %s", KeyUser)
	}
	return nil
}

// Clear attempts both deletes even if the first one fails
func (s *KVStore) Clear() error {
	var errs []error
	for _, key := range []string{KeyAccessToken, KeyUser} {
		if err := s.kv.Delete(key); err != nil {
			errs = append(errs, apperrors.Wrapf(storageErr(err), "[token Clear] delete %s", key))
		}
	}
	return apperrors.Join(errs...)
}

func storageErr(err error) error {
	return apperrors.Join(apperrors.ErrStorage, err)
}
