package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	"github.com/annonstorg/annonstorg-backend/pkg/search"
)

// In-memory repository fakes shared by the service tests. They mimic the
// gorm behavior the services rely on: ErrRecordNotFound on miss and
// ErrDuplicatedKey on unique-index violation.

type fakeAdRepo struct {
	ads    map[uint64]*domain.Ad
	nextID uint64
	images *fakeImageRepo // when set, FindByID attaches image rows
}

func newFakeAdRepo() *fakeAdRepo {
	return &fakeAdRepo{ads: map[uint64]*domain.Ad{}, nextID: 1}
}

func (r *fakeAdRepo) Create(ad *domain.Ad) error {
	ad.ID = r.nextID
	r.nextID++
	now := time.Now()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	r.ads[ad.ID] = ad
	return nil
}

func (r *fakeAdRepo) FindByID(id uint64) (*domain.Ad, error) {
	ad, ok := r.ads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ad
	if r.images != nil {
		cp.Images = r.images.rowsFor(id)
	}
	return &cp, nil
}

func (r *fakeAdRepo) FindByIDs(ids []uint64) ([]*domain.Ad, error) {
	var out []*domain.Ad
	for _, id := range ids {
		if ad, ok := r.ads[id]; ok {
			cp := *ad
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAdRepo) Update(ad *domain.Ad) error {
	if _, ok := r.ads[ad.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	ad.UpdatedAt = time.Now()
	cp := *ad
	r.ads[ad.ID] = &cp
	return nil
}

func (r *fakeAdRepo) UpdateStatus(id uint64, status domain.AdStatus) error {
	ad, ok := r.ads[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ad.Status = status
	ad.UpdatedAt = time.Now()
	return nil
}

func (r *fakeAdRepo) List(params *repository.AdListParams) ([]*domain.Ad, int64, error) {
	now := time.Now()
	var out []*domain.Ad
	for _, ad := range r.sorted() {
		if ad.Status != domain.AdStatusOK || !ad.ExpiresAt.After(now) {
			continue
		}
		if params.CategorySlug != "" && ad.CategorySlug != params.CategorySlug {
			continue
		}
		if params.CountySlug != "" && ad.CountySlug != params.CountySlug {
			continue
		}
		if params.Query != "" {
			q := strings.ToLower(params.Query)
			if !strings.Contains(strings.ToLower(ad.Title), q) &&
				!strings.Contains(strings.ToLower(ad.Description), q) {
				continue
			}
		}
		cp := *ad
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAdRepo) ListByUser(userID uint64, page, limit int) ([]*domain.Ad, int64, error) {
	var out []*domain.Ad
	for _, ad := range r.sorted() {
		if ad.UserID == userID && ad.Status != domain.AdStatusDeleted {
			cp := *ad
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAdRepo) ListPurgeable(cutoff time.Time) ([]*domain.Ad, error) {
	var out []*domain.Ad
	for _, ad := range r.sorted() {
		terminal := ad.Status == domain.AdStatusDeleted ||
			ad.Status == domain.AdStatusExpired ||
			ad.Status == domain.AdStatusSold
		eligible := (terminal && ad.UpdatedAt.Before(cutoff)) ||
			(ad.Status == domain.AdStatusOK && ad.ExpiresAt.Before(cutoff))
		if !eligible {
			continue
		}
		cp := *ad
		if r.images != nil {
			cp.Images = r.images.rowsFor(ad.ID)
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAdRepo) Delete(id uint64) error {
	delete(r.ads, id)
	return nil
}

func (r *fakeAdRepo) sorted() []*domain.Ad {
	ids := make([]uint64, 0, len(r.ads))
	for id := range r.ads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*domain.Ad, len(ids))
	for i, id := range ids {
		out[i] = r.ads[id]
	}
	return out
}

type fakeImageRepo struct {
	images map[uint64]*domain.Image
	nextID uint64
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: map[uint64]*domain.Image{}, nextID: 1}
}

func (r *fakeImageRepo) Create(img *domain.Image) error {
	img.ID = r.nextID
	r.nextID++
	cp := *img
	r.images[img.ID] = &cp
	return nil
}

func (r *fakeImageRepo) FindByID(id uint64) (*domain.Image, error) {
	img, ok := r.images[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *img
	return &cp, nil
}

func (r *fakeImageRepo) FindByAd(adID uint64) ([]*domain.Image, error) {
	var out []*domain.Image
	for _, img := range r.rowsFor(adID) {
		cp := img
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeImageRepo) CountByAd(adID uint64) (int64, error) {
	return int64(len(r.rowsFor(adID))), nil
}

func (r *fakeImageRepo) Delete(id uint64) error {
	delete(r.images, id)
	return nil
}

func (r *fakeImageRepo) DeleteByAd(adID uint64) error {
	for id, img := range r.images {
		if img.AdID == adID {
			delete(r.images, id)
		}
	}
	return nil
}

func (r *fakeImageRepo) rowsFor(adID uint64) []domain.Image {
	ids := make([]uint64, 0, len(r.images))
	for id, img := range r.images {
		if img.AdID == adID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]domain.Image, len(ids))
	for i, id := range ids {
		out[i] = *r.images[id]
	}
	return out
}

type fakeConvRepo struct {
	convs  map[uint64]*domain.Conversation
	nextID uint64
	// forceDuplicate makes the next Create fail as a unique violation,
	// simulating a concurrent insert winning the race
	forceDuplicate bool
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: map[uint64]*domain.Conversation{}, nextID: 1}
}

func (r *fakeConvRepo) Create(conv *domain.Conversation) error {
	if r.forceDuplicate {
		r.forceDuplicate = false
		raced := *conv
		raced.ID = r.nextID
		r.nextID++
		now := time.Now()
		raced.CreatedAt = now
		raced.UpdatedAt = now
		r.convs[raced.ID] = &raced
		return gorm.ErrDuplicatedKey
	}
	for _, c := range r.convs {
		if c.AdID == conv.AdID && c.BuyerID == conv.BuyerID {
			return gorm.ErrDuplicatedKey
		}
	}
	conv.ID = r.nextID
	r.nextID++
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	cp := *conv
	r.convs[conv.ID] = &cp
	return nil
}

func (r *fakeConvRepo) FindByID(id uint64) (*domain.Conversation, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *conv
	return &cp, nil
}

func (r *fakeConvRepo) FindByAdAndBuyer(adID, buyerID uint64) (*domain.Conversation, error) {
	for _, c := range r.convs {
		if c.AdID == adID && c.BuyerID == buyerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConvRepo) ListByParticipant(userID uint64, page, limit int) ([]*domain.Conversation, int64, error) {
	var out []*domain.Conversation
	for _, c := range r.convs {
		if c.BuyerID == userID || c.SellerID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeConvRepo) FindByAd(adID uint64) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range r.convs {
		if c.AdID == adID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeConvRepo) Touch(id uint64) error {
	conv, ok := r.convs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conv.UpdatedAt = time.Now()
	return nil
}

func (r *fakeConvRepo) Delete(id uint64) error {
	delete(r.convs, id)
	return nil
}

type fakeMsgRepo struct {
	messages map[uint64]*domain.Message
	nextID   uint64
	failNext bool
	// failDeleteConv makes DeleteByConversation fail once for that thread
	failDeleteConv uint64
}

func newFakeMsgRepo() *fakeMsgRepo {
	return &fakeMsgRepo{messages: map[uint64]*domain.Message{}, nextID: 1}
}

func (r *fakeMsgRepo) Create(msg *domain.Message) error {
	if r.failNext {
		r.failNext = false
		return errors.New("insert failed")
	}
	msg.ID = r.nextID
	r.nextID++
	msg.CreatedAt = time.Now()
	cp := *msg
	r.messages[msg.ID] = &cp
	return nil
}

func (r *fakeMsgRepo) ListByConversation(conversationID uint64) ([]*domain.Message, error) {
	ids := make([]uint64, 0, len(r.messages))
	for id, m := range r.messages {
		if m.ConversationID == conversationID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*domain.Message, len(ids))
	for i, id := range ids {
		cp := *r.messages[id]
		out[i] = &cp
	}
	return out, nil
}

func (r *fakeMsgRepo) DeleteByConversation(conversationID uint64) error {
	if r.failDeleteConv == conversationID {
		r.failDeleteConv = 0
		return errors.New("delete failed")
	}
	for id, m := range r.messages {
		if m.ConversationID == conversationID {
			delete(r.messages, id)
		}
	}
	return nil
}

type fakeReportRepo struct {
	reports  map[uint64]*domain.Report
	nextID   uint64
	failNext bool
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[uint64]*domain.Report{}, nextID: 1}
}

func (r *fakeReportRepo) Create(report *domain.Report) error {
	if r.failNext {
		r.failNext = false
		return errors.New("insert failed")
	}
	report.ID = r.nextID
	r.nextID++
	report.CreatedAt = time.Now()
	cp := *report
	r.reports[report.ID] = &cp
	return nil
}

func (r *fakeReportRepo) ListPending(page, limit int) ([]*domain.Report, int64, error) {
	var out []*domain.Report
	for _, rep := range r.reports {
		if rep.Status == domain.ReportStatusPending {
			cp := *rep
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeReportRepo) ResolveByAd(adID uint64, resolvedAt time.Time) error {
	for _, rep := range r.reports {
		if rep.AdID == adID && rep.Status == domain.ReportStatusPending {
			rep.Status = domain.ReportStatusResolved
			t := resolvedAt
			rep.ResolvedAt = &t
		}
	}
	return nil
}

type fakeUserRepo struct {
	users map[uint64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint64]*domain.User{}}
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(id uint64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeBlobStorage struct {
	uploaded map[string]string // key -> content type
	deleted  []string
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{uploaded: map[string]string{}}
}

func (s *fakeBlobStorage) Upload(_ context.Context, key string, _ io.Reader, contentType string) (string, error) {
	s.uploaded[key] = contentType
	return key, nil
}

func (s *fakeBlobStorage) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeBlobStorage) URL(key string) string {
	return "https://cdn.test/" + key
}

type fakeAdIndex struct {
	docs      map[uint64]search.AdDocument
	removed   []uint64
	searchIDs []uint64
	searchErr error
}

func newFakeAdIndex() *fakeAdIndex {
	return &fakeAdIndex{docs: map[uint64]search.AdDocument{}}
}

func (i *fakeAdIndex) IndexAd(_ context.Context, doc search.AdDocument) error {
	i.docs[doc.ID] = doc
	return nil
}

func (i *fakeAdIndex) RemoveAd(_ context.Context, adID uint64) error {
	i.removed = append(i.removed, adID)
	delete(i.docs, adID)
	return nil
}

func (i *fakeAdIndex) SearchAds(_ context.Context, _, _, _ string, _, _ int) ([]uint64, int64, error) {
	if i.searchErr != nil {
		return nil, 0, i.searchErr
	}
	return i.searchIDs, int64(len(i.searchIDs)), nil
}
