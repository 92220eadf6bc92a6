package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeclash/internal/common"
	"codeclash/internal/common/clock"
	"codeclash/internal/common/security"
	"codeclash/internal/domain/model"
)

type participationFixture struct {
	svc          *ParticipationService
	contests     *fakeContestRepo
	participants *fakeParticipantRepo
	clk          *clock.Fixed
}

func newParticipationFixture(t *testing.T) *participationFixture {
	t.Helper()
	contests := newFakeContestRepo()
	participants := newFakeParticipantRepo()
	clk := &clock.Fixed{T: contestStart.Add(10 * time.Minute)}
	return &participationFixture{
		svc:          NewParticipationService(participants, contests, clk),
		contests:     contests,
		participants: participants,
		clk:          clk,
	}
}

func (f *participationFixture) addContest(t *testing.T, c *model.Contest) {
	t.Helper()
	if err := f.contests.CreateContest(context.Background(), nil, c); err != nil {
		t.Fatalf("seed contest: %v", err)
	}
}

func publicContest(id string, published bool) *model.Contest {
	return &model.Contest{
		ID:         id,
		Slug:       "contest-" + id,
		Title:      "Contest " + id,
		StartTime:  contestStart,
		EndTime:    contestStart.Add(time.Hour),
		Visibility: model.VisibilityPublic,
		Published:  published,
	}
}

func TestJoinLiveContest(t *testing.T) {
	f := newParticipationFixture(t)
	f.addContest(t, publicContest("c1", true))

	res, err := f.svc.Join(context.Background(), "c1", "u1", "")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if res.AlreadyJoined {
		t.Error("first join reported alreadyJoined")
	}
	if res.Participant == nil || res.Participant.UserID != "u1" || res.Participant.ContestID != "c1" {
		t.Fatalf("unexpected participant: %+v", res.Participant)
	}
	if !res.Participant.JoinedAt.Equal(f.clk.T) {
		t.Errorf("joinedAt = %v, want the admission instant %v", res.Participant.JoinedAt, f.clk.T)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	f := newParticipationFixture(t)
	f.addContest(t, publicContest("c1", true))

	first, err := f.svc.Join(context.Background(), "c1", "u1", "")
	if err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	second, err := f.svc.Join(context.Background(), "c1", "u1", "")
	if err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if !second.AlreadyJoined {
		t.Error("second join did not report alreadyJoined")
	}
	if second.Participant.ID != first.Participant.ID {
		t.Errorf("second join returned a different row: %s vs %s", second.Participant.ID, first.Participant.ID)
	}

	rows, _ := f.participants.ListByContestID(context.Background(), "c1")
	if len(rows) != 1 {
		t.Fatalf("expected exactly one participant row, got %d", len(rows))
	}
}

func TestJoinUpcomingContest(t *testing.T) {
	f := newParticipationFixture(t)
	f.addContest(t, publicContest("c1", true))
	f.clk.Set(contestStart.Add(-30 * time.Minute))

	if _, err := f.svc.Join(context.Background(), "c1", "u1", ""); err != nil {
		t.Fatalf("joining before the start window failed: %v", err)
	}
}

func TestJoinRejectedOutsideWindow(t *testing.T) {
	tests := []struct {
		name      string
		published bool
		at        time.Time
	}{
		{"draft", false, contestStart.Add(10 * time.Minute)},
		{"ended", true, contestStart.Add(time.Hour + time.Second)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newParticipationFixture(t)
			f.addContest(t, publicContest("c1", tc.published))
			f.clk.Set(tc.at)

			_, err := f.svc.Join(context.Background(), "c1", "u1", "")
			if !errors.Is(err, common.ErrContestNotJoinable) {
				t.Fatalf("err = %v, want ErrContestNotJoinable", err)
			}
			rows, _ := f.participants.ListByContestID(context.Background(), "c1")
			if len(rows) != 0 {
				t.Errorf("rejected join left %d rows behind", len(rows))
			}
		})
	}
}

func TestJoinPrivateContestAccessCode(t *testing.T) {
	f := newParticipationFixture(t)
	hash, err := security.HashAccessCode("open-sesame")
	if err != nil {
		t.Fatalf("hash access code: %v", err)
	}
	c := publicContest("c1", true)
	c.Visibility = model.VisibilityPrivate
	c.AccessCodeHash = &hash
	f.addContest(t, c)

	_, err = f.svc.Join(context.Background(), "c1", "u1", "wrong-code")
	if !errors.Is(err, common.ErrInvalidAccessCode) {
		t.Fatalf("err = %v, want ErrInvalidAccessCode", err)
	}
	rows, _ := f.participants.ListByContestID(context.Background(), "c1")
	if len(rows) != 0 {
		t.Fatalf("rejected access code left %d rows behind", len(rows))
	}

	res, err := f.svc.Join(context.Background(), "c1", "u1", "open-sesame")
	if err != nil {
		t.Fatalf("join with the correct code failed: %v", err)
	}
	if res.AlreadyJoined {
		t.Error("first successful join reported alreadyJoined")
	}
}

func TestJoinUnknownContest(t *testing.T) {
	f := newParticipationFixture(t)
	_, err := f.svc.Join(context.Background(), "missing", "u1", "")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
