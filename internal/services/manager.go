package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vidgrab/vidgrab-bot/store"
	"github.com/vidgrab/vidgrab-bot/types"
)

// Manager is the composition root for the domain layer: it owns one
// set of stores and services and the cross-cutting operations (global
// stats, retention cleanup, backups, flushing).
type Manager struct {
	cols      *store.Collections
	users     types.UserStore
	downloads types.DownloadStore
	payments  types.PaymentStore
	campaigns types.CampaignStore

	Users     *UserService
	Downloads *DownloadService
	Payments  *PaymentService
	Ads       *AdService

	log zerolog.Logger
}

type ManagerConfig struct {
	DataDir          string
	MaxFreeDownloads int
	WalletAddress    string
}

func NewManager(cfg ManagerConfig, log zerolog.Logger) (*Manager, error) {
	cols, err := store.NewCollections(cfg.DataDir, log)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cols:      cols,
		users:     store.NewUserStore(cols, log),
		downloads: store.NewDownloadStore(cols, log),
		payments:  store.NewPaymentStore(cols, log),
		campaigns: store.NewCampaignStore(cols, log),
		log:       log.With().Str("component", "manager").Logger(),
	}

	m.Users = NewUserService(m.users, m.downloads, m.payments, log)
	m.Downloads = NewDownloadService(m.downloads, m.Users, cfg.MaxFreeDownloads, log)
	m.Payments = NewPaymentService(m.payments, m.Users, cfg.WalletAddress, log)
	m.Ads = NewAdService(m.campaigns, log)
	return m, nil
}

func (m *Manager) DownloadStore() types.DownloadStore { return m.downloads }
func (m *Manager) UserStore() types.UserStore         { return m.users }

type ManagerStats struct {
	SystemStats
	ActiveCampaigns int
	TotalAdSpend    decimal.Decimal
}

func (m *Manager) SystemStats() ManagerStats {
	stats := ManagerStats{
		SystemStats:  m.Users.SystemStats(),
		TotalAdSpend: decimal.Zero,
	}
	for _, c := range m.campaigns.Active() {
		stats.ActiveCampaigns++
		stats.TotalAdSpend = stats.TotalAdSpend.Add(c.Spent)
	}
	return stats
}

// CleanupOldData removes completed download requests older than the
// given age. Users are never swept.
func (m *Manager) CleanupOldData(age time.Duration) int {
	cutoff := time.Now().Add(-age)
	removed := m.downloads.DeleteCompletedBefore(cutoff)
	m.log.Info().Int("removed", removed).Time("cutoff", cutoff).Msg("retention sweep finished")
	return removed
}

// Backup copies the four collection documents into backupDir with a
// timestamp prefix.
func (m *Manager) Backup(backupDir string) error {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	m.FlushAll()

	stamp := time.Now().Format("20060102_150405")
	for _, name := range []string{"users", "downloads", "payments", "ads"} {
		src := filepath.Join(m.cols.Dir(), name+".json")
		dst := filepath.Join(backupDir, stamp+"_"+name+".json")
		if err := copyFile(src, dst); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("backup %s: %w", name, err)
		}
	}
	m.log.Info().Str("dir", backupDir).Str("stamp", stamp).Msg("backup written")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// FlushAll re-persists every collection; the background timer uses it
// as a best-effort safety net.
func (m *Manager) FlushAll() {
	for name, s := range map[string]interface{ SaveAll() error }{
		"users":     m.users,
		"downloads": m.downloads,
		"payments":  m.payments,
		"ads":       m.campaigns,
	} {
		if err := s.SaveAll(); err != nil {
			m.log.Warn().Err(err).Str("collection", name).Msg("flush failed")
		}
	}
}
