package sync

import (
	"fmt"

	"zone-mirror/core/cloudflare"
	"zone-mirror/core/secrets"
	"zone-mirror/feature/mirror/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GlobalCredential is the optional static credential set from cloudflare.ini.
type GlobalCredential struct {
	Creds      cloudflare.Credentials
	AccountIDs []string
}

// Aggregator merges the global credential set with the enabled per-user
// credential rows into an ordered list of independent sync units: global
// first, then database rows in retrieval order.
type Aggregator struct {
	db     *gorm.DB
	cipher *secrets.Cipher
	apiCfg cloudflare.Config
	logger *zap.Logger
}

// NewAggregator creates a credential aggregator. The cipher carries the
// decryption key explicitly; it may be nil when no key is configured, in
// which case every per-user credential fails closed.
func NewAggregator(db *gorm.DB, cipher *secrets.Cipher, apiCfg cloudflare.Config, logg *zap.Logger) *Aggregator {
	return &Aggregator{db: db, cipher: cipher, apiCfg: apiCfg, logger: logg}
}

// Units produces the sync units for one run: the global unit first (when
// given), then one unit per enabled auto-sync credential row unless
// includeUsers is false. A credential whose secret fails to decrypt is
// recorded as failed and skipped; it never aborts aggregation.
func (a *Aggregator) Units(global *GlobalCredential, includeUsers bool) ([]Unit, error) {
	var units []Unit

	if global != nil {
		units = append(units, Unit{
			Label:      "global",
			Client:     cloudflare.New(global.Creds, a.apiCfg, a.logger),
			AccountIDs: global.AccountIDs,
		})
	}
	if !includeUsers {
		return units, nil
	}

	var rows []models.Credential
	err := a.db.
		Where("enabled = ? AND auto_sync = ?", true, true).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user credentials: %w", err)
	}

	for _, cred := range rows {
		unit, err := a.buildUnit(cred)
		if err != nil {
			a.logger.Error("Skipping credential",
				zap.Uint("credential_id", cred.ID),
				zap.Uint("user_id", cred.UserID),
				zap.Error(err),
			)
			updateCredentialStatus(a.db, a.logger, cred.ID, models.SyncStatusFailed, err.Error())
			continue
		}
		a.logger.Info("Loaded credential",
			zap.Uint("credential_id", cred.ID),
			zap.Uint("user_id", cred.UserID),
			zap.String("cf_account_id", cred.CFAccountID),
		)
		units = append(units, unit)
	}

	return units, nil
}

func (a *Aggregator) buildUnit(cred models.Credential) (Unit, error) {
	if a.cipher == nil {
		return Unit{}, fmt.Errorf("no encryption key configured")
	}

	apiKey, err := a.cipher.Open(cred.CFAPIKey)
	if err != nil {
		return Unit{}, err
	}

	credentialID := cred.ID
	userID := cred.UserID
	return Unit{
		Label: fmt.Sprintf("credential %d (user %d)", cred.ID, cred.UserID),
		Client: cloudflare.New(cloudflare.Credentials{
			APIBase: cred.CFAPIURL,
			Email:   cred.CFEmail,
			APIKey:  apiKey,
		}, a.apiCfg, a.logger),
		AccountIDs:   []string{cred.CFAccountID},
		Domain:       cred.CFDomain,
		CredentialID: &credentialID,
		UserID:       &userID,
	}, nil
}
