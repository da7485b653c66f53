package provisioning

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/famwell-api/internal/domain"
	"github.com/famwell-api/internal/pkg/code"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockIdentityStore struct{ mock.Mock }

func (m *mockIdentityStore) Get(ctx context.Context, identityID string) (*domain.Identity, error) {
	args := m.Called(ctx, identityID)
	if i, _ := args.Get(0).(*domain.Identity); i != nil {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockIdentityStore) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	args := m.Called(ctx, email)
	if i, _ := args.Get(0).(*domain.Identity); i != nil {
		return i, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockIdentityStore) Put(ctx context.Context, i *domain.Identity) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockIdentityStore) SetPasswordHash(ctx context.Context, identityID, hash string) error {
	return m.Called(ctx, identityID, hash).Error(0)
}
func (m *mockIdentityStore) ClearPasswordFlag(ctx context.Context, identityID string) error {
	return m.Called(ctx, identityID).Error(0)
}

type mockCodeStore struct{ mock.Mock }

func (m *mockCodeStore) Issue(ctx context.Context, c *domain.OneTimeCode) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCodeStore) FindPending(ctx context.Context, codeStr string) (*domain.OneTimeCode, error) {
	args := m.Called(ctx, codeStr)
	if c, _ := args.Get(0).(*domain.OneTimeCode); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCodeStore) MarkUsed(ctx context.Context, codeStr string) (bool, error) {
	args := m.Called(ctx, codeStr)
	return args.Bool(0), args.Error(1)
}

type mockLinkStore struct{ mock.Mock }

func (m *mockLinkStore) Put(ctx context.Context, l *domain.FamilyLink) error {
	return m.Called(ctx, l).Error(0)
}
func (m *mockLinkStore) Exists(ctx context.Context, parentID, childID string) (bool, error) {
	args := m.Called(ctx, parentID, childID)
	return args.Bool(0), args.Error(1)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) SoftDeleteByIdentity(ctx context.Context, identityID string) error {
	return m.Called(ctx, identityID).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, phone, msg string) error {
	return m.Called(ctx, phone, msg).Error(0)
}

// --- builder ---

func newService(is *mockIdentityStore, cs *mockCodeStore, ls *mockLinkStore, ss *mockSessionStore, ml *mockMailer, sms *mockSMSSender) Service {
	return NewService(ServiceDeps{
		IdentityRepo:   is,
		CodeRepo:       cs,
		LinkRepo:       ls,
		SessionRepo:    ss,
		Mailer:         ml,
		SMSSender:      sms,
		CodeLength:     8,
		CodeTTL:        time.Hour,
		PasswordMinLen: 8,
	})
}

func parentIdentity() *domain.Identity {
	return &domain.Identity{IdentityID: "p1", Role: domain.RoleParent, Email: "mom@fam.com", DisplayName: "Mom"}
}

func validGenerateReq() GenerateCodeRequest {
	return GenerateCodeRequest{
		ChildName:  "Kid",
		ChildEmail: "kid@fam.com",
		ChildDob:   "2015-04-12",
	}
}

// --- GenerateCode ---

func TestGenerateCode_MissingEmail_ReturnsBadRequest(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	req := validGenerateReq()
	req.ChildEmail = ""
	_, err := svc.GenerateCode(context.Background(), "p1", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestGenerateCode_BadDob_ReturnsBadRequest(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	req := validGenerateReq()
	req.ChildDob = "12/04/2015"
	_, err := svc.GenerateCode(context.Background(), "p1", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestGenerateCode_IssuerNotParent_ReturnsForbidden(t *testing.T) {
	is := &mockIdentityStore{}
	is.On("Get", mock.Anything, "c1").Return(&domain.Identity{IdentityID: "c1", Role: domain.RoleChild}, nil)

	svc := newService(is, nil, nil, nil, nil, nil)
	_, err := svc.GenerateCode(context.Background(), "c1", validGenerateReq())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestGenerateCode_TargetAlreadyRegistered(t *testing.T) {
	is := &mockIdentityStore{}
	is.On("Get", mock.Anything, "p1").Return(parentIdentity(), nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(&domain.Identity{
		IdentityID: "c1", Email: "kid@fam.com", PasswordSet: true,
	}, nil)

	svc := newService(is, nil, nil, nil, nil, nil)
	_, err := svc.GenerateCode(context.Background(), "p1", validGenerateReq())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyRegistered))
}

func TestGenerateCode_HappyPath_IssuesSingleGrant(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	is.On("Get", mock.Anything, "p1").Return(parentIdentity(), nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)
	cs.On("Issue", mock.Anything, mock.MatchedBy(func(c *domain.OneTimeCode) bool {
		return c.TargetEmail == "kid@fam.com" && c.IssuerID == "p1" && !c.Used
	})).Return(nil).Once()
	ml.On("SendEmail", "kid@fam.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(is, cs, nil, nil, ml, nil)
	grant, err := svc.GenerateCode(context.Background(), "p1", validGenerateReq())

	require.NoError(t, err)
	assert.Len(t, grant.Code, 8)
	for _, r := range grant.Code {
		assert.Contains(t, code.Alphabet, string(r))
	}
	assert.True(t, grant.ExpiresAt.After(time.Now().Add(55*time.Minute)))
	cs.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestGenerateCode_FoldsTargetEmail(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	is.On("Get", mock.Anything, "p1").Return(parentIdentity(), nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)
	cs.On("Issue", mock.Anything, mock.MatchedBy(func(c *domain.OneTimeCode) bool {
		return c.TargetEmail == "kid@fam.com" && c.IssuerID == "p1"
	})).Return(nil)
	ml.On("SendEmail", "kid@fam.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(is, cs, nil, nil, ml, nil)
	req := validGenerateReq()
	req.ChildEmail = "KID@Fam.COM"
	_, err := svc.GenerateCode(context.Background(), "p1", req)

	require.NoError(t, err)
	cs.AssertExpectations(t)
}

func TestGenerateCode_MailerFailure_IsNotFatal(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	is.On("Get", mock.Anything, "p1").Return(parentIdentity(), nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)
	cs.On("Issue", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(is, cs, nil, nil, ml, nil)
	grant, err := svc.GenerateCode(context.Background(), "p1", validGenerateReq())

	require.NoError(t, err)
	assert.NotEmpty(t, grant.Code)
}

func TestGenerateCode_CollisionOnce_Redraws(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	is.On("Get", mock.Anything, "p1").Return(parentIdentity(), nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)
	cs.On("Issue", mock.Anything, mock.Anything).Return(domain.ErrConflict).Once()
	cs.On("Issue", mock.Anything, mock.Anything).Return(nil).Once()
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(is, cs, nil, nil, ml, nil)
	grant, err := svc.GenerateCode(context.Background(), "p1", validGenerateReq())

	require.NoError(t, err)
	assert.Len(t, grant.Code, 8)
	cs.AssertExpectations(t)
}

func TestGenerateCode_RivalIssuance_RetriesWithFreshDraw(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	is.On("Get", mock.Anything, "p1").Return(parentIdentity(), nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)

	// A concurrent issuer for the same email bumps the grant pointer first,
	// so the store rejects our transaction twice before we win. Each retry
	// must carry a fresh draw.
	var drawn []string
	record := func(args mock.Arguments) {
		drawn = append(drawn, args.Get(1).(*domain.OneTimeCode).Code)
	}
	cs.On("Issue", mock.Anything, mock.Anything).Run(record).Return(domain.ErrConflict).Twice()
	cs.On("Issue", mock.Anything, mock.Anything).Run(record).Return(nil).Once()
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(is, cs, nil, nil, ml, nil)
	grant, err := svc.GenerateCode(context.Background(), "p1", validGenerateReq())

	require.NoError(t, err)
	assert.NotEmpty(t, grant.Code)
	require.Len(t, drawn, 3)
	assert.NotEqual(t, drawn[0], drawn[1])
	assert.NotEqual(t, drawn[1], drawn[2])
	assert.Equal(t, grant.Code, drawn[2])
	cs.AssertExpectations(t)
}

func TestGenerateCode_TenCollisions_ReturnsExhausted(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}

	is.On("Get", mock.Anything, "p1").Return(parentIdentity(), nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)
	cs.On("Issue", mock.Anything, mock.Anything).Return(domain.ErrConflict).Times(10)

	svc := newService(is, cs, nil, nil, nil, nil)
	_, err := svc.GenerateCode(context.Background(), "p1", validGenerateReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGenerationExhausted))
	cs.AssertExpectations(t)
}

func TestGenerateCode_StoreFailure_Propagates(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}

	is.On("Get", mock.Anything, "p1").Return(parentIdentity(), nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)
	cs.On("Issue", mock.Anything, mock.Anything).Return(domain.ErrStoreUnavailable)

	svc := newService(is, cs, nil, nil, nil, nil)
	_, err := svc.GenerateCode(context.Background(), "p1", validGenerateReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

// --- RedeemCode ---

func pendingGrant() *domain.OneTimeCode {
	return &domain.OneTimeCode{
		Code:        "ABCD2345",
		IssuerID:    "p1",
		TargetEmail: "kid@fam.com",
		TargetName:  "Kid",
		TargetDob:   "2015-04-12",
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   time.Now().Add(30 * time.Minute).Unix(),
	}
}

func TestRedeemCode_MissingFields_ReturnsBadRequest(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	_, err := svc.RedeemCode(context.Background(), RedeemCodeRequest{Code: "ABCD2345"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRedeemCode_UnknownCode_ReturnsInvalidOrExpired(t *testing.T) {
	cs := &mockCodeStore{}
	cs.On("FindPending", mock.Anything, "ABCD2345").Return(nil, domain.ErrNotFound)

	svc := newService(nil, cs, nil, nil, nil, nil)
	_, err := svc.RedeemCode(context.Background(), RedeemCodeRequest{Code: "ABCD2345", Email: "kid@fam.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOrExpiredCode))
}

func TestRedeemCode_EmailMismatch_DoesNotConsume(t *testing.T) {
	cs := &mockCodeStore{}
	cs.On("FindPending", mock.Anything, "ABCD2345").Return(pendingGrant(), nil)

	svc := newService(nil, cs, nil, nil, nil, nil)
	_, err := svc.RedeemCode(context.Background(), RedeemCodeRequest{Code: "ABCD2345", Email: "other@fam.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeEmailMismatch))
	cs.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
}

func TestRedeemCode_LostRace_ReturnsAlreadyConsumed(t *testing.T) {
	cs := &mockCodeStore{}
	cs.On("FindPending", mock.Anything, "ABCD2345").Return(pendingGrant(), nil)
	cs.On("MarkUsed", mock.Anything, "ABCD2345").Return(false, nil)

	svc := newService(nil, cs, nil, nil, nil, nil)
	_, err := svc.RedeemCode(context.Background(), RedeemCodeRequest{Code: "ABCD2345", Email: "kid@fam.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeAlreadyConsumed))
}

func TestRedeemCode_NormalisesCodeAndEmail(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ls := &mockLinkStore{}

	cs.On("FindPending", mock.Anything, "ABCD2345").Return(pendingGrant(), nil)
	cs.On("MarkUsed", mock.Anything, "ABCD2345").Return(true, nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)
	is.On("Put", mock.Anything, mock.Anything).Return(nil)
	ls.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newService(is, cs, ls, nil, nil, nil)
	child, err := svc.RedeemCode(context.Background(), RedeemCodeRequest{
		Code:  "  abcd2345 ",
		Email: "KID@fam.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "kid@fam.com", child.Email)
}

func TestRedeemCode_HappyPath_CreatesChildAndLink(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ls := &mockLinkStore{}

	cs.On("FindPending", mock.Anything, "ABCD2345").Return(pendingGrant(), nil)
	cs.On("MarkUsed", mock.Anything, "ABCD2345").Return(true, nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)
	is.On("Put", mock.Anything, mock.MatchedBy(func(i *domain.Identity) bool {
		return i.Role == domain.RoleChild && i.Email == "kid@fam.com" &&
			!i.PasswordSet && i.DisplayName == "Kid" && i.Dob == "2015-04-12"
	})).Return(nil)
	ls.On("Put", mock.Anything, mock.MatchedBy(func(l *domain.FamilyLink) bool {
		return l.ParentID == "p1" && l.ChildID != ""
	})).Return(nil)

	svc := newService(is, cs, ls, nil, nil, nil)
	child, err := svc.RedeemCode(context.Background(), RedeemCodeRequest{Code: "ABCD2345", Email: "kid@fam.com"})

	require.NoError(t, err)
	assert.NotEmpty(t, child.IdentityID)
	assert.False(t, child.PasswordSet)
	is.AssertExpectations(t)
	ls.AssertExpectations(t)
}

func TestRedeemCode_ReusesLockedIdentity(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ls := &mockLinkStore{}

	existing := &domain.Identity{IdentityID: "c1", Role: domain.RoleChild, Email: "kid@fam.com", PasswordSet: false}
	cs.On("FindPending", mock.Anything, "ABCD2345").Return(pendingGrant(), nil)
	cs.On("MarkUsed", mock.Anything, "ABCD2345").Return(true, nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(existing, nil)
	ls.On("Put", mock.Anything, mock.MatchedBy(func(l *domain.FamilyLink) bool {
		return l.ParentID == "p1" && l.ChildID == "c1"
	})).Return(nil)

	svc := newService(is, cs, ls, nil, nil, nil)
	child, err := svc.RedeemCode(context.Background(), RedeemCodeRequest{Code: "ABCD2345", Email: "kid@fam.com"})

	require.NoError(t, err)
	assert.Equal(t, "c1", child.IdentityID)
	is.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRedeemCode_ExistingLiveCredential_Rejected(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}

	cs.On("FindPending", mock.Anything, "ABCD2345").Return(pendingGrant(), nil)
	cs.On("MarkUsed", mock.Anything, "ABCD2345").Return(true, nil)
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(&domain.Identity{
		IdentityID: "c1", Email: "kid@fam.com", PasswordSet: true,
	}, nil)

	svc := newService(is, cs, nil, nil, nil, nil)
	_, err := svc.RedeemCode(context.Background(), RedeemCodeRequest{Code: "ABCD2345", Email: "kid@fam.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyRegistered))
}

// --- SetPassword ---

func TestSetPassword_TooShort_ReturnsWeakPassword(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	err := svc.SetPassword(context.Background(), "c1", "short")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrWeakPassword))
}

func TestSetPassword_HappyPath_StoresBcryptHash(t *testing.T) {
	is := &mockIdentityStore{}
	var stored string
	is.On("SetPasswordHash", mock.Anything, "c1", mock.AnythingOfType("string")).Run(func(args mock.Arguments) {
		stored = args.String(2)
	}).Return(nil)

	svc := newService(is, nil, nil, nil, nil, nil)
	err := svc.SetPassword(context.Background(), "c1", "longenoughpassword")

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stored, "$2"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("longenoughpassword")))
}

// --- ResetChildCredential ---

func TestResetChildCredential_UnknownEmail_ReturnsForbidden(t *testing.T) {
	is := &mockIdentityStore{}
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(nil, domain.ErrNotFound)

	svc := newService(is, nil, nil, nil, nil, nil)
	_, err := svc.ResetChildCredential(context.Background(), "p1", "kid@fam.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestResetChildCredential_NotLinked_ReturnsForbidden(t *testing.T) {
	is := &mockIdentityStore{}
	ls := &mockLinkStore{}

	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(&domain.Identity{IdentityID: "c1", Email: "kid@fam.com"}, nil)
	ls.On("Exists", mock.Anything, "stranger", "c1").Return(false, nil)

	svc := newService(is, nil, ls, nil, nil, nil)
	_, err := svc.ResetChildCredential(context.Background(), "stranger", "kid@fam.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	is.AssertNotCalled(t, "ClearPasswordFlag", mock.Anything, mock.Anything)
}

func TestResetChildCredential_LocksBeforeReissue(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ls := &mockLinkStore{}
	ss := &mockSessionStore{}
	ml := &mockMailer{}
	sms := &mockSMSSender{}

	var steps []string
	child := &domain.Identity{IdentityID: "c1", Role: domain.RoleChild, Email: "kid@fam.com", DisplayName: "Kid", PasswordSet: true}
	phone := "+15551234"
	issuer := parentIdentity()
	issuer.Phone = &phone

	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(child, nil)
	ls.On("Exists", mock.Anything, "p1", "c1").Return(true, nil)
	is.On("ClearPasswordFlag", mock.Anything, "c1").Run(func(mock.Arguments) {
		steps = append(steps, "lock")
	}).Return(nil)
	ss.On("SoftDeleteByIdentity", mock.Anything, "c1").Return(nil)
	is.On("Get", mock.Anything, "p1").Return(issuer, nil)
	cs.On("Issue", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		steps = append(steps, "issue")
	}).Return(nil)
	ml.On("SendEmail", "kid@fam.com", mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, "+15551234", mock.Anything).Return(nil)

	svc := newService(is, cs, ls, ss, ml, sms)
	grant, err := svc.ResetChildCredential(context.Background(), "p1", "kid@fam.com")

	require.NoError(t, err)
	assert.Len(t, grant.Code, 8)
	assert.Equal(t, []string{"lock", "issue"}, steps)
	is.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestResetChildCredential_SessionPurgeFailure_IsNotFatal(t *testing.T) {
	is := &mockIdentityStore{}
	cs := &mockCodeStore{}
	ls := &mockLinkStore{}
	ss := &mockSessionStore{}
	ml := &mockMailer{}

	child := &domain.Identity{IdentityID: "c1", Role: domain.RoleChild, Email: "kid@fam.com", DisplayName: "Kid"}
	is.On("GetByEmail", mock.Anything, "kid@fam.com").Return(child, nil)
	ls.On("Exists", mock.Anything, "p1", "c1").Return(true, nil)
	is.On("ClearPasswordFlag", mock.Anything, "c1").Return(nil)
	ss.On("SoftDeleteByIdentity", mock.Anything, "c1").Return(errors.New("dynamo down"))
	is.On("Get", mock.Anything, "p1").Return(parentIdentity(), nil)
	cs.On("Issue", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(is, cs, ls, ss, ml, nil)
	grant, err := svc.ResetChildCredential(context.Background(), "p1", "kid@fam.com")

	require.NoError(t, err)
	assert.NotEmpty(t, grant.Code)
}
