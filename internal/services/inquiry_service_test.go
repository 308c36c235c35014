package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salemre/backend/internal/apperrors"
	"salemre/backend/internal/events"
	"salemre/backend/internal/models"
)

func TestInquiryCreateNotifiesAndPublishes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	owner := seedUser(t, store, "owner@example.com", models.RoleAgent)
	props := NewPropertyService(store, testConfig(), nil, nil)
	p, err := props.Create(ctx, propertyInput("Garden House", "house", 100), owner)
	require.NoError(t, err)

	tasks := new(mockTaskEnqueuer)
	pub := new(mockPublisher)
	svc := NewInquiryService(store, testConfig(), tasks, pub)

	tasks.On("EnqueueInquiryNotification", mock.Anything, mock.AnythingOfType("int64")).Return(nil).Once()
	pub.On("Publish", mock.Anything, events.InquiryCreated, mock.AnythingOfType("services.InquiryCreatedEvent")).Return(nil).Once()

	i, err := svc.Create(ctx, InquiryInput{
		Name:       " Ayesha ",
		Email:      "Ayesha@Example.com",
		Message:    "Is it still available?",
		PropertyID: &p.ID,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Ayesha", i.Name)
	assert.Equal(t, "ayesha@example.com", i.Email)
	assert.Equal(t, models.InquiryStatusNew, i.Status)
	assert.Nil(t, i.UserID)
	tasks.AssertCalled(t, "EnqueueInquiryNotification", mock.Anything, i.ID)
	tasks.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestInquiryCreateRecordsCaller(t *testing.T) {
	store := newTestStore(t)
	user := seedUser(t, store, "visitor@example.com", models.RoleUser)
	svc := NewInquiryService(store, testConfig(), nil, nil)

	i, err := svc.Create(context.Background(), InquiryInput{Name: "V", Email: "v@example.com", Message: "Hello"}, user)
	require.NoError(t, err)
	require.NotNil(t, i.UserID)
	assert.Equal(t, user.UserID, *i.UserID)
}

func TestInquiryCreateValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tasks := new(mockTaskEnqueuer)
	svc := NewInquiryService(store, testConfig(), tasks, nil)

	_, err := svc.Create(ctx, InquiryInput{Name: "X", Email: "not-an-email", Message: "Hi"}, nil)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"email must be a valid email address"}, appErr.Details)

	missing := int64(4242)
	_, err = svc.Create(ctx, InquiryInput{Name: "X", Email: "x@example.com", Message: "Hi", PropertyID: &missing}, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	tasks.AssertNotCalled(t, "EnqueueInquiryNotification", mock.Anything, mock.Anything)
}

func TestInquiryAdminOperations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	admin := seedUser(t, store, "admin@example.com", models.RoleAdmin)
	user := seedUser(t, store, "user@example.com", models.RoleUser)
	svc := NewInquiryService(store, testConfig(), nil, nil)

	i, err := svc.Create(ctx, InquiryInput{Name: "Lead", Email: "lead@example.com", Message: "Call me"}, nil)
	require.NoError(t, err)

	_, err = svc.List(ctx, url.Values{}, user)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	_, err = svc.List(ctx, url.Values{}, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	_, err = svc.Get(ctx, i.ID, user)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))

	_, err = svc.Update(ctx, i.ID, InquiryUpdate{Status: ptr("spam")}, admin)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	updated, err := svc.Update(ctx, i.ID, InquiryUpdate{Status: ptr("In-Progress")}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryStatusInProgress, updated.Status)

	res, err := svc.List(ctx, url.Values{"status": {"in-progress"}}, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
	res, err = svc.List(ctx, url.Values{"status": {"new"}}, admin)
	require.NoError(t, err)
	assert.Zero(t, res.Count)

	require.NoError(t, svc.Delete(ctx, i.ID, admin))
	_, err = svc.Get(ctx, i.ID, admin)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestInquirySince(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewInquiryService(store, testConfig(), nil, nil)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 130; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		if i < 5 {
			at = base.Add(-48 * time.Hour)
		}
		require.NoError(t, store.Inquiries().Create(ctx, &models.Inquiry{
			Name:      "Lead",
			Email:     "lead@example.com",
			Message:   "Hi",
			Status:    models.InquiryStatusNew,
			CreatedAt: at,
			UpdatedAt: at,
		}))
	}

	got, err := svc.Since(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 125)
	for k := 1; k < len(got); k++ {
		assert.False(t, got[k].CreatedAt.Before(got[k-1].CreatedAt))
	}
}
