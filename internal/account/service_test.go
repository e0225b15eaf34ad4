package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solstice-id/solstice/internal/shared"
)

type fakeRecord struct {
	acc     Account
	deleted bool
}

type fakeRepo struct {
	records []*fakeRecord
	nextID  int64
}

func (f *fakeRepo) add(username string) *Account {
	f.nextID++
	rec := &fakeRecord{acc: Account{
		ID:       f.nextID,
		PublicID: uuid.New(),
		Username: username,
		Email:    username + "@x.com",
		Role:     RoleUser,
		Status:   StatusActive,
	}}
	f.records = append(f.records, rec)
	return &rec.acc
}

func (f *fakeRepo) Create(_ context.Context, input NewAccount) (*Account, error) {
	acc := f.add(input.Username)
	return acc, nil
}

func (f *fakeRepo) FindByPublicID(_ context.Context, publicID uuid.UUID) (*Account, error) {
	for _, rec := range f.records {
		if !rec.deleted && rec.acc.PublicID == publicID {
			out := rec.acc
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*Account, error) {
	for _, rec := range f.records {
		if !rec.deleted && rec.acc.Email == email {
			out := rec.acc
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, limit, offset int) ([]Account, int, error) {
	var live []Account
	for _, rec := range f.records {
		if !rec.deleted {
			live = append(live, rec.acc)
		}
	}
	total := len(live)
	if offset > len(live) {
		offset = len(live)
	}
	end := offset + limit
	if end > len(live) {
		end = len(live)
	}
	return live[offset:end], total, nil
}

func (f *fakeRepo) FindForAuth(_ context.Context, _ string) (*AuthRecord, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) FindForAuthByID(_ context.Context, _ int64) (*AuthRecord, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) UpdateProfile(_ context.Context, id int64, update ProfileUpdate) (*Account, error) {
	for _, rec := range f.records {
		if rec.deleted || rec.acc.ID != id {
			continue
		}
		if update.FullName != nil {
			rec.acc.FullName = *update.FullName
		}
		if update.Phone != nil {
			rec.acc.Phone = *update.Phone
		}
		rec.acc.UpdatedAt = time.Now()
		out := rec.acc
		return &out, nil
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) UpdatePassword(_ context.Context, _ int64, _ string, _ int64) error {
	return shared.ErrVersionConflict
}

func (f *fakeRepo) SetStatus(_ context.Context, id int64, status Status) error {
	for _, rec := range f.records {
		if !rec.deleted && rec.acc.ID == id {
			rec.acc.Status = status
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakeRepo) SoftDelete(_ context.Context, id int64) error {
	for _, rec := range f.records {
		if !rec.deleted && rec.acc.ID == id {
			rec.deleted = true
			return nil
		}
	}
	return shared.ErrNotFound
}

var _ Repository = (*fakeRepo)(nil)

func TestListPaginates(t *testing.T) {
	repo := &fakeRepo{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		repo.add(name)
	}
	svc := NewService(repo)

	accounts, meta, err := svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, 5, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	accounts, _, err = svc.List(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestListExcludesSoftDeleted(t *testing.T) {
	repo := &fakeRepo{}
	keep := repo.add("keep")
	gone := repo.add("gone")
	svc := NewService(repo)

	require.NoError(t, svc.SoftDelete(context.Background(), gone.PublicID))

	accounts, meta, err := svc.List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, keep.Username, accounts[0].Username)
	assert.Equal(t, 1, meta.Total)
}

func TestGetNotFound(t *testing.T) {
	svc := NewService(&fakeRepo{})
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateProfilePartial(t *testing.T) {
	repo := &fakeRepo{}
	acc := repo.add("bob")
	svc := NewService(repo)

	name := "Bob B."
	updated, err := svc.UpdateProfile(context.Background(), acc.PublicID, ProfileUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bob B.", updated.FullName)
	assert.Equal(t, acc.Phone, updated.Phone)
}

func TestEnableDisable(t *testing.T) {
	repo := &fakeRepo{}
	acc := repo.add("bob")
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Disable(ctx, acc.PublicID))
	got, err := svc.Get(ctx, acc.PublicID)
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, got.Status)

	require.NoError(t, svc.Enable(ctx, acc.PublicID))
	got, err = svc.Get(ctx, acc.PublicID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
}

func TestSoftDeleteHidesAccount(t *testing.T) {
	repo := &fakeRepo{}
	acc := repo.add("bob")
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.SoftDelete(ctx, acc.PublicID))

	_, err := svc.Get(ctx, acc.PublicID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Deleting twice is a not-found, not a silent success.
	err = svc.SoftDelete(ctx, acc.PublicID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
