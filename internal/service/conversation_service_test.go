package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/pkg/wordfilter"
)

const testSecret = "test-messaging-secret"

type convFixture struct {
	adRepo   *fakeAdRepo
	convRepo *fakeConvRepo
	msgRepo  *fakeMsgRepo
	svc      ConversationService
	adID     uint64
	sellerID uint64
	buyerID  uint64
}

func newConvFixture(t *testing.T) *convFixture {
	t.Helper()
	adRepo := newFakeAdRepo()
	convRepo := newFakeConvRepo()
	msgRepo := newFakeMsgRepo()

	ad := &domain.Ad{
		UserID:        10,
		Title:         "Soffa i gott skick",
		Status:        domain.AdStatusOK,
		AllowMessages: true,
		CategorySlug:  "mobler",
		CountySlug:    "stockholm",
		ExpiresAt:     time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, adRepo.Create(ad))

	svc := NewConversationService(convRepo, msgRepo, adRepo, wordfilter.New(nil), testSecret, 30)
	return &convFixture{
		adRepo:   adRepo,
		convRepo: convRepo,
		msgRepo:  msgRepo,
		svc:      svc,
		adID:     ad.ID,
		sellerID: 10,
		buyerID:  20,
	}
}

func TestStartConversation(t *testing.T) {
	t.Run("creates the thread", func(t *testing.T) {
		f := newConvFixture(t)

		conv, err := f.svc.StartConversation(f.adID, f.buyerID)
		require.NoError(t, err)
		assert.Equal(t, f.adID, conv.AdID)
		assert.Equal(t, f.buyerID, conv.BuyerID)
		assert.Equal(t, f.sellerID, conv.SellerID)
		assert.Equal(t, "Soffa i gott skick", conv.AdTitle)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), conv.ExpiresAt, time.Minute)
	})

	t.Run("second call returns the same thread", func(t *testing.T) {
		f := newConvFixture(t)

		first, err := f.svc.StartConversation(f.adID, f.buyerID)
		require.NoError(t, err)
		second, err := f.svc.StartConversation(f.adID, f.buyerID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, f.convRepo.convs, 1)
	})

	t.Run("lost insert race resolves to the winner", func(t *testing.T) {
		f := newConvFixture(t)
		f.convRepo.forceDuplicate = true

		conv, err := f.svc.StartConversation(f.adID, f.buyerID)
		require.NoError(t, err)
		assert.Len(t, f.convRepo.convs, 1)
		assert.Equal(t, f.buyerID, conv.BuyerID)
	})

	t.Run("seller cannot message own ad", func(t *testing.T) {
		f := newConvFixture(t)

		_, err := f.svc.StartConversation(f.adID, f.sellerID)
		assert.ErrorIs(t, err, common.ErrOwnAd)
	})

	t.Run("messaging disabled by seller", func(t *testing.T) {
		f := newConvFixture(t)
		f.adRepo.ads[f.adID].AllowMessages = false

		_, err := f.svc.StartConversation(f.adID, f.buyerID)
		assert.ErrorIs(t, err, common.ErrMessagingDisabled)
	})

	t.Run("expired ad is not contactable", func(t *testing.T) {
		f := newConvFixture(t)
		f.adRepo.ads[f.adID].ExpiresAt = time.Now().Add(-time.Hour)

		_, err := f.svc.StartConversation(f.adID, f.buyerID)
		assert.ErrorIs(t, err, common.ErrMessagingDisabled)
	})

	t.Run("deleted ad reads as missing", func(t *testing.T) {
		f := newConvFixture(t)
		f.adRepo.ads[f.adID].Status = domain.AdStatusDeleted

		_, err := f.svc.StartConversation(f.adID, f.buyerID)
		assert.ErrorIs(t, err, common.ErrAdNotFound)
	})
}

func TestSendMessage(t *testing.T) {
	start := func(t *testing.T, f *convFixture) uint64 {
		t.Helper()
		conv, err := f.svc.StartConversation(f.adID, f.buyerID)
		require.NoError(t, err)
		return conv.ID
	}

	t.Run("plaintext never hits storage", func(t *testing.T) {
		f := newConvFixture(t)
		convID := start(t, f)

		resp, err := f.svc.SendMessage(convID, f.buyerID, "Hej! Är soffan kvar?")
		require.NoError(t, err)
		assert.Equal(t, "Hej! Är soffan kvar?", resp.Content)
		assert.True(t, resp.IsOwn)

		stored := f.msgRepo.messages[resp.ID]
		assert.NotContains(t, stored.EncryptedContent, "soffan")
		assert.NotEmpty(t, stored.Nonce)
	})

	t.Run("non-participant is rejected", func(t *testing.T) {
		f := newConvFixture(t)
		convID := start(t, f)

		_, err := f.svc.SendMessage(convID, 999, "hej")
		assert.ErrorIs(t, err, common.ErrForbidden)
	})

	t.Run("expired conversation blocks sending", func(t *testing.T) {
		f := newConvFixture(t)
		convID := start(t, f)
		f.convRepo.convs[convID].ExpiresAt = time.Now().Add(-time.Hour)

		_, err := f.svc.SendMessage(convID, f.buyerID, "hej")
		assert.ErrorIs(t, err, common.ErrConversationExpired)
	})

	t.Run("blank and oversized bodies are rejected", func(t *testing.T) {
		f := newConvFixture(t)
		convID := start(t, f)

		_, err := f.svc.SendMessage(convID, f.buyerID, "   ")
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		_, err = f.svc.SendMessage(convID, f.buyerID, strings.Repeat("å", domain.MaxMessageLength+1))
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		_, err = f.svc.SendMessage(convID, f.buyerID, strings.Repeat("å", domain.MaxMessageLength))
		assert.NoError(t, err, "length limit counts runes, not bytes")
	})

	t.Run("blocklisted content is rejected", func(t *testing.T) {
		f := newConvFixture(t)
		convID := start(t, f)

		_, err := f.svc.SendMessage(convID, f.buyerID, "Betala via Western Union tack")
		assert.ErrorIs(t, err, common.ErrMessageBlocked)
		assert.Empty(t, f.msgRepo.messages, "blocked message is never stored")
	})

	t.Run("touch bumps the thread", func(t *testing.T) {
		f := newConvFixture(t)
		convID := start(t, f)
		before := f.convRepo.convs[convID].UpdatedAt

		time.Sleep(2 * time.Millisecond)
		_, err := f.svc.SendMessage(convID, f.buyerID, "hej")
		require.NoError(t, err)
		assert.True(t, f.convRepo.convs[convID].UpdatedAt.After(before))
	})
}

func TestListMessages(t *testing.T) {
	t.Run("both participants read the same thread", func(t *testing.T) {
		f := newConvFixture(t)
		conv, err := f.svc.StartConversation(f.adID, f.buyerID)
		require.NoError(t, err)

		_, err = f.svc.SendMessage(conv.ID, f.buyerID, "Är soffan kvar?")
		require.NoError(t, err)
		_, err = f.svc.SendMessage(conv.ID, f.sellerID, "Ja, kom förbi ikväll")
		require.NoError(t, err)

		buyerView, err := f.svc.ListMessages(conv.ID, f.buyerID)
		require.NoError(t, err)
		require.Len(t, buyerView, 2)
		assert.Equal(t, "Är soffan kvar?", buyerView[0].Content)
		assert.True(t, buyerView[0].IsOwn)
		assert.Equal(t, "Ja, kom förbi ikväll", buyerView[1].Content)
		assert.False(t, buyerView[1].IsOwn)

		sellerView, err := f.svc.ListMessages(conv.ID, f.sellerID)
		require.NoError(t, err)
		require.Len(t, sellerView, 2)
		assert.False(t, sellerView[0].IsOwn)
		assert.True(t, sellerView[1].IsOwn)
	})

	t.Run("history readable after expiry", func(t *testing.T) {
		f := newConvFixture(t)
		conv, err := f.svc.StartConversation(f.adID, f.buyerID)
		require.NoError(t, err)
		_, err = f.svc.SendMessage(conv.ID, f.buyerID, "hej")
		require.NoError(t, err)

		f.convRepo.convs[conv.ID].ExpiresAt = time.Now().Add(-time.Hour)

		msgs, err := f.svc.ListMessages(conv.ID, f.buyerID)
		require.NoError(t, err)
		assert.Len(t, msgs, 1)
	})

	t.Run("tampered row becomes a placeholder", func(t *testing.T) {
		f := newConvFixture(t)
		conv, err := f.svc.StartConversation(f.adID, f.buyerID)
		require.NoError(t, err)

		good, err := f.svc.SendMessage(conv.ID, f.buyerID, "intakt meddelande")
		require.NoError(t, err)
		bad, err := f.svc.SendMessage(conv.ID, f.buyerID, "detta förstörs")
		require.NoError(t, err)
		f.msgRepo.messages[bad.ID].Nonce = f.msgRepo.messages[good.ID].Nonce

		msgs, err := f.svc.ListMessages(conv.ID, f.buyerID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "intakt meddelande", msgs[0].Content)
		assert.Equal(t, domain.UnreadablePlaceholder, msgs[1].Content)
	})

	t.Run("non-participant is rejected", func(t *testing.T) {
		f := newConvFixture(t)
		conv, err := f.svc.StartConversation(f.adID, f.buyerID)
		require.NoError(t, err)

		_, err = f.svc.ListMessages(conv.ID, 999)
		assert.ErrorIs(t, err, common.ErrForbidden)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		f := newConvFixture(t)

		_, err := f.svc.ListMessages(4711, f.buyerID)
		assert.ErrorIs(t, err, common.ErrConversationNotFound)
	})
}

func TestListConversations(t *testing.T) {
	f := newConvFixture(t)
	conv, err := f.svc.StartConversation(f.adID, f.buyerID)
	require.NoError(t, err)

	for _, userID := range []uint64{f.buyerID, f.sellerID} {
		convs, meta, err := f.svc.ListConversations(userID, 1, 20)
		require.NoError(t, err)
		require.Len(t, convs, 1)
		assert.Equal(t, conv.ID, convs[0].ID)
		assert.Equal(t, "Soffa i gott skick", convs[0].AdTitle)
		assert.Equal(t, int64(1), meta.Total)
	}

	convs, _, err := f.svc.ListConversations(999, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, convs)
}
