package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/arklim/identity-core/internal/core/domain"
	"github.com/arklim/identity-core/internal/core/port"
	"github.com/arklim/identity-core/internal/infra/security"
	"github.com/arklim/identity-core/internal/repository"
)

type mockAccountRepository struct {
	account *domain.Account
	getErr  error

	createCalls int
	created     domain.Account
	createErr   error

	updateStatusCalls  int
	updateStatusStatus domain.AccountStatus
	updateStatusErr    error

	updateRoleCalls int
	updateRoleRole  domain.Role
	updateRoleErr   error

	setEmailVerifiedCalls int
	setEmailVerifiedErr   error

	setPhoneVerifiedCalls int
	setPhoneVerifiedErr   error

	touchCalls int
	touchErr   error
}

func (m *mockAccountRepository) Create(_ context.Context, account domain.Account) error {
	m.createCalls++
	m.created = account
	return m.createErr
}

func (m *mockAccountRepository) get() (*domain.Account, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.account == nil {
		return nil, repository.ErrNotFound
	}
	copied := *m.account
	return &copied, nil
}

func (m *mockAccountRepository) GetByID(context.Context, string) (*domain.Account, error) {
	return m.get()
}

func (m *mockAccountRepository) GetByEmail(context.Context, string) (*domain.Account, error) {
	return m.get()
}

func (m *mockAccountRepository) UpdateStatus(_ context.Context, _ string, status domain.AccountStatus, _ time.Time) error {
	m.updateStatusCalls++
	m.updateStatusStatus = status
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	if m.account != nil {
		m.account.Status = status
	}
	return nil
}

func (m *mockAccountRepository) UpdateRole(_ context.Context, _ string, role domain.Role, _ time.Time) error {
	m.updateRoleCalls++
	m.updateRoleRole = role
	if m.updateRoleErr != nil {
		return m.updateRoleErr
	}
	if m.account != nil {
		m.account.Role = role
	}
	return nil
}

func (m *mockAccountRepository) SetEmailVerified(_ context.Context, _ string, _ time.Time) error {
	m.setEmailVerifiedCalls++
	if m.setEmailVerifiedErr != nil {
		return m.setEmailVerifiedErr
	}
	if m.account != nil {
		m.account.EmailVerified = true
	}
	return nil
}

func (m *mockAccountRepository) SetPhoneVerified(_ context.Context, _ string, _ time.Time) error {
	m.setPhoneVerifiedCalls++
	if m.setPhoneVerifiedErr != nil {
		return m.setPhoneVerifiedErr
	}
	if m.account != nil {
		m.account.PhoneVerified = true
	}
	return nil
}

func (m *mockAccountRepository) Touch(context.Context, string, time.Time) error {
	m.touchCalls++
	return m.touchErr
}

type mockCredentialRepository struct {
	credential *domain.Credential

	createCalls int
	created     domain.Credential
	createErr   error

	replaceCalls int
	replaced     domain.Credential
	replaceErr   error
}

func (m *mockCredentialRepository) Create(_ context.Context, credential domain.Credential) error {
	m.createCalls++
	m.created = credential
	return m.createErr
}

func (m *mockCredentialRepository) GetByAccountID(context.Context, string) (*domain.Credential, error) {
	if m.credential == nil {
		return nil, repository.ErrNotFound
	}
	copied := *m.credential
	return &copied, nil
}

func (m *mockCredentialRepository) Replace(_ context.Context, credential domain.Credential) error {
	m.replaceCalls++
	m.replaced = credential
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.credential = &credential
	return nil
}

type mockEmailVerificationRepository struct {
	record *domain.EmailVerification

	createCalls int
	created     domain.EmailVerification
	createErr   error

	deleteCalls int
	deleteErr   error
}

func (m *mockEmailVerificationRepository) Create(_ context.Context, record domain.EmailVerification) error {
	m.createCalls++
	m.created = record
	if m.createErr != nil {
		return m.createErr
	}
	m.record = &record
	return nil
}

func (m *mockEmailVerificationRepository) GetByToken(_ context.Context, token string) (*domain.EmailVerification, error) {
	if m.record == nil || m.record.Token != token {
		return nil, repository.ErrNotFound
	}
	copied := *m.record
	return &copied, nil
}

func (m *mockEmailVerificationRepository) GetByAccountID(_ context.Context, accountID string) (*domain.EmailVerification, error) {
	if m.record == nil || m.record.AccountID != accountID {
		return nil, repository.ErrNotFound
	}
	copied := *m.record
	return &copied, nil
}

func (m *mockEmailVerificationRepository) DeleteByAccountID(context.Context, string) error {
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.record = nil
	return nil
}

type mockPhoneVerificationRepository struct {
	record *domain.PhoneVerification

	createCalls int
	created     domain.PhoneVerification
	createErr   error

	incrementCalls int
	incrementErr   error

	deleteCalls int
	deleteErr   error
}

func (m *mockPhoneVerificationRepository) Create(_ context.Context, record domain.PhoneVerification) error {
	m.createCalls++
	m.created = record
	if m.createErr != nil {
		return m.createErr
	}
	m.record = &record
	return nil
}

func (m *mockPhoneVerificationRepository) GetByAccountID(_ context.Context, accountID string) (*domain.PhoneVerification, error) {
	if m.record == nil || m.record.AccountID != accountID {
		return nil, repository.ErrNotFound
	}
	copied := *m.record
	return &copied, nil
}

func (m *mockPhoneVerificationRepository) IncrementAttempts(_ context.Context, id string) (int, error) {
	m.incrementCalls++
	if m.incrementErr != nil {
		return 0, m.incrementErr
	}
	if m.record == nil || m.record.ID != id {
		return 0, repository.ErrNotFound
	}
	m.record.Attempts++
	return m.record.Attempts, nil
}

func (m *mockPhoneVerificationRepository) DeleteByAccountID(context.Context, string) error {
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.record = nil
	return nil
}

type mockPasswordResetRepository struct {
	record *domain.PasswordReset

	createCalls int
	created     domain.PasswordReset
	createErr   error

	deleteCalls int
	deleteErr   error

	deleteByAccountCalls int
	deleteByAccountErr   error
}

func (m *mockPasswordResetRepository) Create(_ context.Context, record domain.PasswordReset) error {
	m.createCalls++
	m.created = record
	if m.createErr != nil {
		return m.createErr
	}
	m.record = &record
	return nil
}

func (m *mockPasswordResetRepository) GetByTokenHash(_ context.Context, hash string) (*domain.PasswordReset, error) {
	if m.record == nil || m.record.TokenHash != hash {
		return nil, repository.ErrNotFound
	}
	copied := *m.record
	return &copied, nil
}

func (m *mockPasswordResetRepository) Delete(_ context.Context, id string) error {
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.record == nil || m.record.ID != id {
		return repository.ErrNotFound
	}
	m.record = nil
	return nil
}

func (m *mockPasswordResetRepository) DeleteByAccountID(context.Context, string) error {
	m.deleteByAccountCalls++
	if m.deleteByAccountErr != nil {
		return m.deleteByAccountErr
	}
	m.record = nil
	return nil
}

// mockTransactor hands the same mock repositories to the transactional
// closure, so tests observe every mutation directly.
type mockTransactor struct {
	repos    port.RepositorySet
	calls    int
	beginErr error
}

func (m *mockTransactor) WithinTx(_ context.Context, fn func(repos port.RepositorySet) error) error {
	m.calls++
	if m.beginErr != nil {
		return m.beginErr
	}
	return fn(m.repos)
}

type mockEventPublisher struct {
	registeredCalls int
	registered      domain.AccountRegisteredEvent

	passwordChangedCalls int
	passwordChanged      domain.PasswordChangedEvent

	resetRequestedCalls int
	resetRequested      domain.PasswordResetRequestedEvent

	verificationRequestedCalls int
	verificationRequested      domain.VerificationRequestedEvent

	verificationConfirmedCalls int
	verificationConfirmed      domain.VerificationConfirmedEvent

	roleChangedCalls int
	roleChanged      domain.RoleChangedEvent

	err error
}

func (m *mockEventPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	m.registeredCalls++
	m.registered = event
	return m.err
}

func (m *mockEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	m.passwordChangedCalls++
	m.passwordChanged = event
	return m.err
}

func (m *mockEventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	m.resetRequestedCalls++
	m.resetRequested = event
	return m.err
}

func (m *mockEventPublisher) PublishVerificationRequested(_ context.Context, event domain.VerificationRequestedEvent) error {
	m.verificationRequestedCalls++
	m.verificationRequested = event
	return m.err
}

func (m *mockEventPublisher) PublishVerificationConfirmed(_ context.Context, event domain.VerificationConfirmedEvent) error {
	m.verificationConfirmedCalls++
	m.verificationConfirmed = event
	return m.err
}

func (m *mockEventPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	m.roleChangedCalls++
	m.roleChanged = event
	return m.err
}

type mockNotifier struct {
	emailCalls int
	emailToken string

	phoneCalls int
	phoneCode  string

	resetCalls int
	resetToken string

	err error
}

func (m *mockNotifier) SendEmailVerification(_ context.Context, _, token string, _ time.Time) error {
	m.emailCalls++
	m.emailToken = token
	return m.err
}

func (m *mockNotifier) SendPhoneCode(_ context.Context, _, code string, _ time.Time) error {
	m.phoneCalls++
	m.phoneCode = code
	return m.err
}

func (m *mockNotifier) SendPasswordReset(_ context.Context, _, token string, _ time.Time) error {
	m.resetCalls++
	m.resetToken = token
	return m.err
}

// publisherOrNil avoids handing services a typed nil through the interface.
func publisherOrNil(m *mockEventPublisher) port.EventPublisher {
	if m == nil {
		return nil
	}
	return m
}

func notifierOrNil(m *mockNotifier) port.Notifier {
	if m == nil {
		return nil
	}
	return m
}

func newTestTokenService(t *testing.T) *security.TokenService {
	t.Helper()
	svc, err := security.NewTokenService("unit-test-secret", "identity-core-test", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func newRepositorySet(
	accounts *mockAccountRepository,
	credentials *mockCredentialRepository,
	emails *mockEmailVerificationRepository,
	phones *mockPhoneVerificationRepository,
	resets *mockPasswordResetRepository,
) port.RepositorySet {
	return port.RepositorySet{
		Accounts:           accounts,
		Credentials:        credentials,
		EmailVerifications: emails,
		PhoneVerifications: phones,
		PasswordResets:     resets,
	}
}
