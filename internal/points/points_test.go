package points

import (
	"testing"
	"time"
)

var day = time.Date(2025, 6, 16, 21, 0, 0, 0, time.UTC)

func TestAdd(t *testing.T) {
	l := Ledger{TotalPoints: 40}
	l, e := Add(l, ReviewPoints, ReasonReview, day)

	if l.TotalPoints != 50 {
		t.Errorf("expected 50 points, got %d", l.TotalPoints)
	}
	if e.Value != 10 || e.Reason != ReasonReview {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestFirstQualifyingDayStartsStreakAtOne(t *testing.T) {
	l, entries := ApplyDailyAdherence(Ledger{}, true, day)

	if l.TotalPoints != 10 {
		t.Errorf("expected 10 points, got %d", l.TotalPoints)
	}
	if l.StreakCount != 1 {
		t.Errorf("expected streak 1, got %d", l.StreakCount)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(entries))
	}
	if l.LastAdherenceDate == nil || !l.LastAdherenceDate.Equal(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected last adherence date %v", l.LastAdherenceDate)
	}
}

func TestConsecutiveDayIncrementsStreak(t *testing.T) {
	yesterday := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	l := Ledger{TotalPoints: 20, StreakCount: 1, LastAdherenceDate: &yesterday}

	l, _ = ApplyDailyAdherence(l, true, day)

	if l.StreakCount != 2 {
		t.Errorf("expected streak 2, got %d", l.StreakCount)
	}
	if l.TotalPoints != 30 {
		t.Errorf("expected 30 points, got %d", l.TotalPoints)
	}
}

func TestGapResetsStreakToOne(t *testing.T) {
	twoDaysAgo := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	l := Ledger{TotalPoints: 100, StreakCount: 9, LastAdherenceDate: &twoDaysAgo}

	l, _ = ApplyDailyAdherence(l, true, day)

	if l.StreakCount != 1 {
		t.Errorf("expected streak reset to 1 after a gap, got %d", l.StreakCount)
	}
}

func TestEveryThirdDayAwardsBonus(t *testing.T) {
	yesterday := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	l := Ledger{TotalPoints: 20, StreakCount: 2, LastAdherenceDate: &yesterday}

	l, entries := ApplyDailyAdherence(l, true, day)

	if l.StreakCount != 3 {
		t.Fatalf("expected streak 3, got %d", l.StreakCount)
	}
	// 10 base + 5 bonus.
	if l.TotalPoints != 35 {
		t.Errorf("expected 35 points, got %d", l.TotalPoints)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two history entries, got %d", len(entries))
	}
	if entries[1].Value != StreakBonusPoints || entries[1].Reason != ReasonStreakBonus {
		t.Errorf("unexpected bonus entry %+v", entries[1])
	}
}

func TestPartialDayIsNoOp(t *testing.T) {
	yesterday := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	before := Ledger{TotalPoints: 20, StreakCount: 1, LastAdherenceDate: &yesterday}

	after, entries := ApplyDailyAdherence(before, false, day)

	if after != before {
		t.Errorf("partial day must not change the ledger: %+v", after)
	}
	if entries != nil {
		t.Errorf("partial day must not produce history entries")
	}
}

func TestSameDayIdempotence(t *testing.T) {
	once, _ := ApplyDailyAdherence(Ledger{}, true, day)
	twice, entries := ApplyDailyAdherence(once, true, day.Add(time.Hour))

	if twice.TotalPoints != once.TotalPoints || twice.StreakCount != once.StreakCount {
		t.Errorf("second run on the same day must be a no-op: %+v vs %+v", twice, once)
	}
	if entries != nil {
		t.Errorf("second run on the same day must not award again")
	}
}
