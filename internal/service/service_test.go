package service

// Shared in-memory fakes for the service tests. Fakes (not a mock
// framework) keep these tests dependency-free and easy to read — you can
// see exactly what each fake does.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hackclub/food-passport/internal/apperror"
	"github.com/hackclub/food-passport/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// =========================================================================
// fakeUserRepo
// =========================================================================

type fakeUserRepo struct {
	users     map[string]*model.User // keyed by internal ID
	bySlackID map[string]*model.User // keyed by Slack ID (for Upsert)
	clubs     *fakeClubRepo          // for GetProfile joins; may be nil
	nextID    int

	// set to a non-nil error to simulate a database failure
	upsertErr  error
	setClubErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     make(map[string]*model.User),
		bySlackID: make(map[string]*model.User),
		nextID:    1,
	}
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.bySlackID[user.SlackID]; ok {
		// UPDATE path — keep ID and club, refresh profile fields
		existing.DisplayName = user.DisplayName
		existing.Email = user.Email
		existing.AvatarURL = user.AvatarURL
		existing.Role = user.Role
		existing.UpdatedAt = time.Now()
		*user = *existing
		return nil
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	f.bySlackID[user.SlackID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	profile := &model.Profile{User: *u}
	if u.ClubID != nil && f.clubs != nil {
		if club, ok := f.clubs.byID[*u.ClubID]; ok {
			copied := *club
			profile.Club = &copied
		}
	}
	return profile, nil
}

func (f *fakeUserRepo) SetClub(ctx context.Context, userID, clubID string) error {
	if f.setClubErr != nil {
		return f.setClubErr
	}
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	u.ClubID = &clubID
	return nil
}

// =========================================================================
// fakeClubRepo
// =========================================================================

type fakeClubRepo struct {
	byID   map[string]*model.Club
	users  *fakeUserRepo
	nextID int

	// every attempted join code, in order — lets tests observe retries
	triedCodes []string
	// fail the first N CreateWithOwner calls with this error
	failFirst int
	failErr   error
}

func newFakeClubRepo(users *fakeUserRepo) *fakeClubRepo {
	f := &fakeClubRepo{
		byID:   make(map[string]*model.Club),
		users:  users,
		nextID: 1,
	}
	if users != nil {
		users.clubs = f
	}
	return f
}

func (f *fakeClubRepo) CreateWithOwner(ctx context.Context, club *model.Club, ownerID string) error {
	f.triedCodes = append(f.triedCodes, club.JoinCode)
	if f.failFirst > 0 {
		f.failFirst--
		return f.failErr
	}
	if _, ok := f.users.users[ownerID]; !ok {
		return apperror.NotFound("user", ownerID)
	}
	club.ID = fmt.Sprintf("club-%d", f.nextID)
	f.nextID++
	club.CreatedAt = time.Now()
	copied := *club
	f.byID[club.ID] = &copied
	f.users.users[ownerID].ClubID = &club.ID
	return nil
}

func (f *fakeClubRepo) GetByID(ctx context.Context, id string) (*model.Club, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("club", id)
	}
	return c, nil
}

func (f *fakeClubRepo) GetByJoinCode(ctx context.Context, joinCode string) (*model.Club, error) {
	for _, c := range f.byID {
		if c.JoinCode == joinCode {
			return c, nil
		}
	}
	return nil, apperror.NotFound("club", joinCode)
}

func (f *fakeClubRepo) List(ctx context.Context) ([]model.ClubRecord, error) {
	records := make([]model.ClubRecord, 0, len(f.byID))
	for _, c := range f.byID {
		records = append(records, model.ClubRecord{Club: *c})
	}
	return records, nil
}

func (f *fakeClubRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apperror.NotFound("club", id)
	}
	delete(f.byID, id)
	return nil
}

// =========================================================================
// fakeWorkshopRepo
// =========================================================================

type fakeWorkshopRepo struct {
	workshops []model.Workshop
}

func (f *fakeWorkshopRepo) GetByID(ctx context.Context, id string) (*model.Workshop, error) {
	for i := range f.workshops {
		if f.workshops[i].ID == id {
			return &f.workshops[i], nil
		}
	}
	return nil, apperror.NotFound("workshop", id)
}

func (f *fakeWorkshopRepo) GetBySlug(ctx context.Context, slug string) (*model.Workshop, error) {
	for i := range f.workshops {
		if f.workshops[i].Slug == slug {
			return &f.workshops[i], nil
		}
	}
	return nil, apperror.NotFound("workshop", slug)
}

func (f *fakeWorkshopRepo) ListVisible(ctx context.Context, clubJoinCode string) ([]model.Workshop, error) {
	var out []model.Workshop
	for _, ws := range f.workshops {
		if ws.Scope == model.ScopeGlobal || (clubJoinCode != "" && ws.Scope == clubJoinCode) {
			out = append(out, ws)
		}
	}
	return out, nil
}

// =========================================================================
// fakeSubmissionRepo
// =========================================================================

type submissionKey struct{ userID, workshopID string }

type fakeSubmissionRepo struct {
	subs map[submissionKey]*model.Submission

	upsertErr error
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: make(map[submissionKey]*model.Submission)}
}

func (f *fakeSubmissionRepo) Upsert(ctx context.Context, sub *model.Submission) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	copied := *sub
	f.subs[submissionKey{sub.UserID, sub.WorkshopID}] = &copied
	return nil
}

func (f *fakeSubmissionRepo) Get(ctx context.Context, userID, workshopID string) (*model.Submission, error) {
	s, ok := f.subs[submissionKey{userID, workshopID}]
	if !ok {
		return nil, apperror.NotFound("submission", userID+"/"+workshopID)
	}
	return s, nil
}

func (f *fakeSubmissionRepo) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	var out []model.Submission
	for k, s := range f.subs {
		if k.userID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListAll(ctx context.Context) ([]model.SubmissionRecord, error) {
	var out []model.SubmissionRecord
	for _, s := range f.subs {
		out = append(out, model.SubmissionRecord{Submission: *s})
	}
	return out, nil
}

func (f *fakeSubmissionRepo) Delete(ctx context.Context, userID, workshopID string) error {
	k := submissionKey{userID, workshopID}
	if _, ok := f.subs[k]; !ok {
		return apperror.NotFound("submission", userID+"/"+workshopID)
	}
	delete(f.subs, k)
	return nil
}
