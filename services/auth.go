package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ventrilinks/config"
	"ventrilinks/models"
	"ventrilinks/providers/airtable"
	"ventrilinks/storage"
)

// Sentinel-Fehler der Auth-Pfade; die HTTP-Schicht mappt sie auf Statuscodes.
var (
	ErrEmailTaken         = errors.New("account already exists for this email")
	ErrStartupNameTaken   = errors.New("startup name already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// MailSender verschickt die Passwort-Reset-Mail.
type MailSender interface {
	Send(to, subject, body string) error
}

// AuthService verwaltet Accounts und Bearer-Sessions. Sessions laufen fix nach
// SessionTTL ab, es gibt keinen Refresh.
type AuthService struct {
	Clients  RecordTable
	Sessions storage.SessionStore
	Mailer   MailSender
	Logger   *zap.Logger
	Now      func() time.Time

	SessionTTL time.Duration
	ResetTTL   time.Duration
	PortalURL  string

	// Serialisiert check-then-create bei der Registrierung innerhalb dieses
	// Prozesses; der externe Store selbst bietet kein Compare-and-Set.
	mu sync.Mutex
}

// NewAuthService erstellt den AuthService mit Echtzeit-Uhr.
func NewAuthService(clients RecordTable, sessions storage.SessionStore, sender MailSender, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		Clients:    clients,
		Sessions:   sessions,
		Mailer:     sender,
		Logger:     logger,
		Now:        time.Now,
		SessionTTL: cfg.SessionTTL,
		ResetTTL:   cfg.ResetTokenTTL,
		PortalURL:  cfg.PortalURL,
	}
}

// Register legt einen neuen Account an. E-Mail und Startup-Name müssen über
// alle bestehenden Zeilen eindeutig sein.
func (a *AuthService) Register(ctx context.Context, email, password, startupName string) (*models.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	records, err := a.Clients.List(ctx)
	if err != nil {
		return nil, err
	}
	norm := models.NormalizeEmail(email)
	for _, rec := range records {
		if models.NormalizeEmail(models.GetString(rec.Fields, "email")) == norm {
			return nil, ErrEmailTaken
		}
	}
	for _, rec := range records {
		if strings.EqualFold(models.GetString(rec.Fields, "companyName"), strings.TrimSpace(startupName)) {
			return nil, ErrStartupNameTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	rec, err := a.Clients.Create(ctx, map[string]any{
		"email":       email,
		"companyName": startupName,
		"password":    string(hash),
	})
	if err != nil {
		return nil, err
	}

	a.Logger.Info("Account registriert", zap.String("record_id", rec.ID))
	return a.mintSession(ctx, rec.ID)
}

// Login prüft die Credentials gegen die eine Zeile des Accounts, die ein
// Passwort trägt, und mintet bei Erfolg eine Session.
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	rec, err := a.findCredentialRecord(ctx, email)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		// Kein Unterschied zwischen "Account fehlt" und "Passwort falsch".
		return nil, ErrInvalidCredentials
	}

	stored := models.GetString(rec.Fields, "password")
	if !a.checkPassword(ctx, rec, stored, password) {
		return nil, ErrInvalidCredentials
	}

	return a.mintSession(ctx, rec.ID)
}

// Authenticate löst einen Bearer-Token zur Startup-Zeile auf. Abgelaufene
// Sessions werden lazy gelöscht; jeder Fehlschlag ist ErrInvalidSession.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*models.Startup, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	session, err := a.Sessions.Get(ctx, token)
	if err != nil || session == nil {
		return nil, ErrInvalidSession
	}
	if session.Expired(a.Now()) {
		_ = a.Sessions.Delete(ctx, token)
		return nil, ErrInvalidSession
	}

	rec, err := a.Clients.Get(ctx, session.RecordID)
	if err != nil || rec == nil {
		return nil, ErrInvalidSession
	}
	return models.StartupFromFields(rec.ID, rec.Fields), nil
}

// Logout entfernt die Session bedingungslos; unbekannte Token sind kein Fehler.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	return a.Sessions.Delete(ctx, token)
}

// ForgotPassword hinterlegt einen Reset-Token auf der Account-Zeile und mailt
// den Link. Unbekannte Adressen liefern bewusst keinen Fehler nach außen.
func (a *AuthService) ForgotPassword(ctx context.Context, email string) error {
	rec, err := a.findCredentialRecord(ctx, email)
	if err != nil {
		return err
	}
	if rec == nil {
		a.Logger.Info("Passwort-Reset für unbekannte Adresse angefragt")
		return nil
	}

	token, err := newToken()
	if err != nil {
		return err
	}
	expiry := a.Now().Add(a.ResetTTL)
	if _, err := a.Clients.Update(ctx, rec.ID, map[string]any{
		"resetToken":       token,
		"resetTokenExpiry": expiry.UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(a.PortalURL, "/"), token)
	body := fmt.Sprintf(
		"<p>Someone requested a password reset for your VentriLinks account.</p>"+
			"<p><a href=%q>Reset your password</a> (valid for %s).</p>"+
			"<p>If this wasn't you, ignore this mail.</p>",
		link, a.ResetTTL)
	return a.Mailer.Send(models.GetString(rec.Fields, "email"), "Reset your VentriLinks password", body)
}

// ResetPassword setzt das Passwort anhand eines noch gültigen Reset-Tokens neu
// und räumt den Token ab.
func (a *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetToken
	}
	records, err := a.Clients.List(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if models.GetString(rec.Fields, "resetToken") != token {
			continue
		}
		expiry := models.GetTime(rec.Fields, "resetTokenExpiry")
		if expiry == nil || a.Now().After(*expiry) {
			return ErrInvalidResetToken
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = a.Clients.Update(ctx, rec.ID, map[string]any{
			"password":         string(hash),
			"resetToken":       "",
			"resetTokenExpiry": "",
		})
		return err
	}
	return ErrInvalidResetToken
}

// SweepSessions entfernt abgelaufene Sessions (Cron-Job).
func (a *AuthService) SweepSessions(ctx context.Context) (int, error) {
	return a.Sessions.DeleteExpired(ctx, a.Now())
}

// findCredentialRecord sucht die eine Zeile zur E-Mail, die ein Passwort trägt.
func (a *AuthService) findCredentialRecord(ctx context.Context, email string) (*airtable.Record, error) {
	records, err := a.Clients.List(ctx)
	if err != nil {
		return nil, err
	}
	norm := models.NormalizeEmail(email)
	for i, rec := range records {
		if models.NormalizeEmail(models.GetString(rec.Fields, "email")) != norm {
			continue
		}
		if models.GetString(rec.Fields, "password") != "" {
			return &records[i], nil
		}
	}
	return nil, nil
}

// checkPassword vergleicht gegen den bcrypt-Hash. Alt-Zeilen mit Klartext-
// Passwort (kein "$2"-Präfix) werden einmal akzeptiert und dabei auf einen
// Hash migriert.
func (a *AuthService) checkPassword(ctx context.Context, rec *airtable.Record, stored, supplied string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
		return false
	}
	if hash, err := bcrypt.GenerateFromPassword([]byte(supplied), bcrypt.DefaultCost); err == nil {
		if _, err := a.Clients.Update(ctx, rec.ID, map[string]any{"password": string(hash)}); err != nil {
			a.Logger.Warn("Hash-Migration fehlgeschlagen", zap.String("record_id", rec.ID), zap.Error(err))
		} else {
			a.Logger.Info("Klartext-Passwort auf bcrypt migriert", zap.String("record_id", rec.ID))
		}
	}
	return true
}

func (a *AuthService) mintSession(ctx context.Context, recordID string) (*models.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	session := models.Session{
		Token:     token,
		RecordID:  recordID,
		ExpiresAt: a.Now().Add(a.SessionTTL),
	}
	if err := a.Sessions.Put(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// newToken liefert 32 Zufallsbytes hex-kodiert.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
