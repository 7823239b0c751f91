package types

import (
	"encoding/json"
	"fmt"
)

// Status values are persisted as their string tag. Decoding is strict:
// an unrecognized tag is an error, so a corrupt record is skipped at
// load instead of silently defaulting.

type UserStatus string

const (
	UserStatusFree    UserStatus = "free"
	UserStatusTrial   UserStatus = "trial"
	UserStatusPremium UserStatus = "premium"
	UserStatusAdmin   UserStatus = "admin"
)

func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case UserStatusFree, UserStatusTrial, UserStatusPremium, UserStatusAdmin:
		return UserStatus(s), nil
	}
	return "", fmt.Errorf("unknown user status %q", s)
}

func (s *UserStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseUserStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type DownloadStatus string

const (
	DownloadPending    DownloadStatus = "pending"
	DownloadProcessing DownloadStatus = "processing"
	DownloadCompleted  DownloadStatus = "completed"
	DownloadFailed     DownloadStatus = "failed"
)

func ParseDownloadStatus(s string) (DownloadStatus, error) {
	switch DownloadStatus(s) {
	case DownloadPending, DownloadProcessing, DownloadCompleted, DownloadFailed:
		return DownloadStatus(s), nil
	}
	return "", fmt.Errorf("unknown download status %q", s)
}

func (s *DownloadStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseDownloadStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentConfirmed, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

func (s *PaymentStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParsePaymentStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type AdType string

const (
	AdBanner       AdType = "banner"
	AdInterstitial AdType = "interstitial"
	AdRewarded     AdType = "rewarded"
)

func ParseAdType(s string) (AdType, error) {
	switch AdType(s) {
	case AdBanner, AdInterstitial, AdRewarded:
		return AdType(s), nil
	}
	return "", fmt.Errorf("unknown ad type %q", s)
}

func (t *AdType) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseAdType(raw)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
