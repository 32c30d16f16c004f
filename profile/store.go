package profile

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/vpn-access/common"
	"github.com/yllada/vpn-access/location"
	"github.com/yllada/vpn-access/token"
)

// Store owns the durable profile collection. Mutating operations are
// serialized behind one lock and follow a read-modify-persist-commit
// cycle: the new state is written to disk first and only becomes visible
// in memory once the write succeeded.
type Store struct {
	mu               sync.RWMutex
	path             string
	profiles         []*Profile
	defaultProfileID string
	clientCountry    string
	secrets          common.SecretStore
}

// storeFile is the persisted shape of the store.
type storeFile struct {
	DefaultProfileID string     `yaml:"default_profile_id,omitempty"`
	Profiles         []*Profile `yaml:"profiles"`
}

// NewStore opens (or creates) the profile store in the given directory.
// secrets may be nil, in which case token secrets stay inside the profile
// file.
func NewStore(dir string, secrets common.SecretStore) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, common.WrapError(common.ErrStorageFailure, err.Error())
	}

	s := &Store{
		path:    filepath.Join(dir, common.ProfilesFileName),
		secrets: secrets,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the persisted profile list. A missing file means an empty
// store, not an error.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return common.WrapError(common.ErrStorageFailure, err.Error())
	}

	var file storeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return common.WrapError(common.ErrStorageFailure, err.Error())
	}
	s.profiles = file.Profiles
	s.defaultProfileID = file.DefaultProfileID
	return nil
}

// persist writes the given state durably and commits it to memory only on
// success, keeping the in-memory view at the last durable snapshot when
// the write fails.
func (s *Store) persist(profiles []*Profile, defaultProfileID string) error {
	data, err := yaml.Marshal(&storeFile{
		DefaultProfileID: defaultProfileID,
		Profiles:         profiles,
	})
	if err != nil {
		return common.WrapError(common.ErrStorageFailure, err.Error())
	}

	// Write-then-rename so a failed write never clobbers the previous file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return common.WrapError(common.ErrStorageFailure, err.Error())
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return common.WrapError(common.ErrStorageFailure, err.Error())
	}

	s.profiles = profiles
	s.defaultProfileID = defaultProfileID
	return nil
}

// ImportAccessKey decodes an access key and imports it as a profile.
func (s *Store) ImportAccessKey(accessKey string) (*Item, error) {
	t, err := token.FromAccessKey(accessKey)
	if err != nil {
		return nil, err
	}
	return s.ImportToken(t)
}

// ImportToken imports a parsed token. If a profile already wraps the same
// token id, its stored credential is replaced while the profile id and
// user metadata survive; otherwise a new profile is created. Never fails
// for a well-formed token, aside from persistence errors.
func (s *Store) ImportToken(t *token.Token) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	s.divertSecret(t)

	profiles := s.snapshot()
	var imported *Profile
	for i, p := range profiles {
		if p.TokenID == t.TokenID {
			updated := p.clone()
			updated.Token = t
			profiles[i] = updated
			imported = updated
			break
		}
	}
	if imported == nil {
		imported = &Profile{
			ProfileID:  common.NewID(),
			TokenID:    t.TokenID,
			ImportedAt: time.Now().UTC(),
			Token:      t,
		}
		profiles = append(profiles, imported)
	}

	if err := s.persist(profiles, s.defaultProfileID); err != nil {
		return nil, err
	}
	common.LogInfo("imported access key for token %s", t.TokenID)
	return s.item(imported), nil
}

// Update applies a partial patch to a profile.
func (s *Store) Update(profileID string, params UpdateParams) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := s.snapshot()
	var updated *Profile
	for i, p := range profiles {
		if p.ProfileID == profileID {
			updated = p.clone()
			profiles[i] = updated
			break
		}
	}
	if updated == nil {
		return nil, common.ErrProfileNotFound
	}

	if params.Name.HasValue() {
		updated.Name = params.Name.Value()
	}
	if params.IsFavorite.HasValue() {
		updated.IsFavorite = params.IsFavorite.Value()
	}
	if params.CustomData.HasValue() {
		updated.CustomData = params.CustomData.Value()
	}

	if err := s.persist(profiles, s.defaultProfileID); err != nil {
		return nil, err
	}
	return s.item(updated), nil
}

// Remove deletes a profile and its credential. Built-in profiles and the
// current default profile are protected from user-initiated removal.
func (s *Store) Remove(profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.profiles {
		if p.ProfileID == profileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return common.ErrProfileNotFound
	}
	removed := s.profiles[idx]
	if removed.IsBuiltIn || removed.ProfileID == s.defaultProfileID {
		return common.ErrUnauthorized
	}

	profiles := s.snapshot()
	profiles = append(profiles[:idx], profiles[idx+1:]...)
	if err := s.persist(profiles, s.defaultProfileID); err != nil {
		return err
	}
	s.dropSecret(removed.TokenID)
	return nil
}

// ReconcileBuiltIn replaces the entire built-in partition with profiles
// derived from the supplied credential set, leaving user-imported profiles
// untouched. The first built-in profile becomes the process default. This
// is the one sanctioned path that deletes built-in profiles.
func (s *Store) ReconcileBuiltIn(tokens []*token.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make(map[string]bool, len(tokens))
	var profiles []*Profile
	for _, t := range tokens {
		t = t.Clone()
		s.divertSecret(t)
		kept[t.TokenID] = true

		// Reuse the profile id and metadata when the token is already
		// known, keeping the TokenID/ProfileID mapping stable.
		p := s.findByTokenID(t.TokenID)
		if p != nil {
			p = p.clone()
			p.Token = t
		} else {
			p = &Profile{
				ProfileID:  common.NewID(),
				TokenID:    t.TokenID,
				ImportedAt: time.Now().UTC(),
				Token:      t,
			}
		}
		p.IsBuiltIn = true
		profiles = append(profiles, p)
	}

	var droppedTokenIDs []string
	for _, p := range s.profiles {
		if kept[p.TokenID] {
			continue
		}
		if p.IsBuiltIn {
			droppedTokenIDs = append(droppedTokenIDs, p.TokenID)
			continue
		}
		profiles = append(profiles, p.clone())
	}

	// The first built-in profile is the process default. Without built-ins
	// the previous default survives if its profile does.
	defaultProfileID := ""
	if len(tokens) > 0 && len(profiles) > 0 {
		defaultProfileID = profiles[0].ProfileID
	} else {
		for _, p := range profiles {
			if p.ProfileID == s.defaultProfileID {
				defaultProfileID = s.defaultProfileID
				break
			}
		}
	}

	if err := s.persist(profiles, defaultProfileID); err != nil {
		return err
	}
	for _, tokenID := range droppedTokenIDs {
		s.dropSecret(tokenID)
	}
	common.LogInfo("reconciled %d built-in profile(s)", len(tokens))
	return nil
}

// Reload updates the ambient client country context. Resolution output is
// derived on demand, so there is nothing else to recompute eagerly and no
// persisted state changes.
func (s *Store) Reload(clientCountry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientCountry = clientCountry
}

// ClientCountry returns the current client country context.
func (s *Store) ClientCountry() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCountry
}

// DefaultProfileID returns the process-wide default profile id, if any.
func (s *Store) DefaultProfileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultProfileID
}

// List returns all profiles in stable insertion order.
func (s *Store) List() []*Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Profile, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p.clone()
	}
	return out
}

// Get returns a profile with its resolved info.
func (s *Store) Get(profileID string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.ProfileID == profileID {
			return s.item(p), nil
		}
	}
	return nil, common.ErrProfileNotFound
}

// FindByID returns the profile with the given id, or nil.
func (s *Store) FindByID(profileID string) *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.ProfileID == profileID {
			return p.clone()
		}
	}
	return nil
}

// FindByTokenID returns the profile wrapping the given token id, or nil.
func (s *Store) FindByTokenID(tokenID string) *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p := s.findByTokenID(tokenID); p != nil {
		return p.clone()
	}
	return nil
}

// GetToken returns the stored token for the given token id, with its
// secret reattached when it is kept in the secret store.
func (s *Store) GetToken(tokenID string) (*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.findByTokenID(tokenID)
	if p == nil || p.Token == nil {
		return nil, common.ErrTokenNotFound
	}

	t := p.Token.Clone()
	if len(t.Secret) == 0 && s.secrets != nil {
		if secret, err := s.secrets.Get(tokenID); err == nil {
			t.Secret = secret
		}
	}
	return t, nil
}

// item builds the resolved view for a profile. Resolution is pure, so it
// is computed fresh from the stored token and the ambient country.
func (s *Store) item(p *Profile) *Item {
	item := &Item{Profile: *p.clone()}
	item.Info = Info{
		ProfileID:  p.ProfileID,
		TokenID:    p.TokenID,
		Name:       p.DisplayName(),
		IsBuiltIn:  p.IsBuiltIn,
		IsFavorite: p.IsFavorite,
		CustomData: p.CustomData,
	}
	if p.Token != nil {
		item.Info.SupportID = p.Token.SupportID
		item.Info.ServerLocationInfos = location.Resolve(p.Token, s.clientCountry)
	}
	return item
}

// snapshot copies the profile slice so mutations stay invisible until
// persisted.
func (s *Store) snapshot() []*Profile {
	out := make([]*Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

func (s *Store) findByTokenID(tokenID string) *Profile {
	for _, p := range s.profiles {
		if p.TokenID == tokenID {
			return p
		}
	}
	return nil
}

// divertSecret moves the token secret into the secret store when one is
// configured, keeping it out of the profile file. On failure the secret
// stays in the file; the import itself never fails over it.
func (s *Store) divertSecret(t *token.Token) {
	if s.secrets == nil || len(t.Secret) == 0 {
		return
	}
	if err := s.secrets.Store(t.TokenID, t.Secret); err != nil {
		common.LogWarn("keeping secret for token %s in profile file: %v", t.TokenID, err)
		return
	}
	t.Secret = nil
}

// dropSecret removes a token secret from the secret store, best effort.
func (s *Store) dropSecret(tokenID string) {
	if s.secrets == nil {
		return
	}
	if err := s.secrets.Delete(tokenID); err != nil {
		common.LogWarn("failed to delete secret for token %s: %v", tokenID, err)
	}
}
