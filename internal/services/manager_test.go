package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestManagerSystemStats(t *testing.T) {
	m := newTestManager(t)
	registerUser(t, m, "900")
	m.Downloads.CreateRequest("900", "https://youtu.be/abc", false)

	stats := m.SystemStats()
	if stats.TotalUsers != 1 || stats.TotalDownloads != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ActiveCampaigns != 0 || !stats.TotalAdSpend.Equal(decimal.Zero) {
		t.Fatalf("ad stats = %d campaigns, %s spend", stats.ActiveCampaigns, stats.TotalAdSpend)
	}
}

func TestManagerCleanupOldData(t *testing.T) {
	m := newTestManager(t)
	registerUser(t, m, "901")

	res := m.Downloads.CreateRequest("901", "https://youtu.be/abc", false)
	id := res.Request.ID
	m.DownloadStore().MarkProcessing(id)
	m.DownloadStore().MarkCompleted(id, "/downloads/a.mp4", 10, "360p", "mp4")

	// age zero puts the cutoff at now, sweeping everything completed
	if removed := m.CleanupOldData(0); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if m.Downloads.Get(id) != nil {
		t.Fatal("completed download survived the sweep")
	}
}

func TestManagerBackup(t *testing.T) {
	m := newTestManager(t)
	registerUser(t, m, "902")

	backupDir := t.TempDir()
	if err := m.Backup(backupDir); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_users.json") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no users backup among %d entries", len(entries))
	}
}

func TestManagerFlushAll(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(ManagerConfig{
		DataDir:          dir,
		MaxFreeDownloads: 3,
		WalletAddress:    testWallet,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := m.Users.Register("903", "u", "F", "L"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	m.FlushAll()

	for _, name := range []string{"users", "downloads", "payments", "ads"} {
		if _, err := os.Stat(filepath.Join(dir, name+".json")); err != nil {
			t.Errorf("collection %s not on disk after FlushAll: %v", name, err)
		}
	}
}

func TestManagerStateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := ManagerConfig{DataDir: dir, MaxFreeDownloads: 3, WalletAddress: testWallet}

	m1, err := NewManager(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := m1.Users.Register("904", "u", "F", "L"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	payment, err := m1.Payments.CreatePayment("904", "monthly")
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if res := m1.Payments.ConfirmPayment(payment.ID, "deadbeef01"); !res.OK {
		t.Fatalf("ConfirmPayment: %s", res.Message)
	}

	m2, err := NewManager(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager (restart): %v", err)
	}
	user := m2.Users.Get("904")
	if user == nil {
		t.Fatal("user lost across restart")
	}
	if !user.IsPremium(time.Now()) {
		t.Fatal("premium lost across restart")
	}
	if got := len(m2.Payments.UserPayments("904")); got != 1 {
		t.Fatalf("payments after restart = %d", got)
	}
}
