package backup

import (
	"context"
	"errors"
	"testing"
	"time"

	"homevault/internal/models"

	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestComputeNextRunDaily(t *testing.T) {
	schedule := &models.BackupSchedule{Frequency: "daily", Time: "02:00"}

	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC) // Tuesday, past 02:00
	next := computeNextRun(schedule, now)
	require.Equal(t, time.Date(2025, 3, 5, 2, 0, 0, 0, time.UTC), next)

	early := time.Date(2025, 3, 4, 1, 0, 0, 0, time.UTC) // before 02:00
	next = computeNextRun(schedule, early)
	require.Equal(t, time.Date(2025, 3, 4, 2, 0, 0, 0, time.UTC), next)

	exact := time.Date(2025, 3, 4, 2, 0, 0, 0, time.UTC) // exactly 02:00 rolls over
	next = computeNextRun(schedule, exact)
	require.Equal(t, time.Date(2025, 3, 5, 2, 0, 0, 0, time.UTC), next)
}

func TestComputeNextRunWeekly(t *testing.T) {
	schedule := &models.BackupSchedule{Frequency: "weekly", Time: "02:00", DayOfWeek: intPtr(3)}

	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC) // Tuesday
	next := computeNextRun(schedule, now)
	require.Equal(t, time.Date(2025, 3, 5, 2, 0, 0, 0, time.UTC), next) // Wednesday
	require.Equal(t, time.Wednesday, next.Weekday())

	// On the target weekday before the scheduled time, it runs that same day
	wedEarly := time.Date(2025, 3, 5, 1, 0, 0, 0, time.UTC)
	next = computeNextRun(schedule, wedEarly)
	require.Equal(t, time.Date(2025, 3, 5, 2, 0, 0, 0, time.UTC), next)

	// On the target weekday past the scheduled time, it waits a full week
	wedLate := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	next = computeNextRun(schedule, wedLate)
	require.Equal(t, time.Date(2025, 3, 12, 2, 0, 0, 0, time.UTC), next)
}

func TestComputeNextRunMonthly(t *testing.T) {
	schedule := &models.BackupSchedule{Frequency: "monthly", Time: "03:30", DayOfMonth: intPtr(15)}

	now := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	next := computeNextRun(schedule, now)
	require.Equal(t, time.Date(2025, 3, 15, 3, 30, 0, 0, time.UTC), next)

	past := time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
	next = computeNextRun(schedule, past)
	require.Equal(t, time.Date(2025, 4, 15, 3, 30, 0, 0, time.UTC), next)
}

func TestValidateSchedule(t *testing.T) {
	cases := []struct {
		name     string
		schedule models.BackupSchedule
		ok       bool
	}{
		{"valid daily", models.BackupSchedule{Frequency: "daily", Time: "02:00"}, true},
		{"valid weekly", models.BackupSchedule{Frequency: "weekly", Time: "02:00", DayOfWeek: intPtr(0)}, true},
		{"valid monthly", models.BackupSchedule{Frequency: "monthly", Time: "23:59", DayOfMonth: intPtr(31)}, true},
		{"unknown frequency", models.BackupSchedule{Frequency: "hourly", Time: "02:00"}, false},
		{"bad time", models.BackupSchedule{Frequency: "daily", Time: "2am"}, false},
		{"weekly without day", models.BackupSchedule{Frequency: "weekly", Time: "02:00"}, false},
		{"weekly day out of range", models.BackupSchedule{Frequency: "weekly", Time: "02:00", DayOfWeek: intPtr(7)}, false},
		{"monthly without day", models.BackupSchedule{Frequency: "monthly", Time: "02:00"}, false},
		{"monthly day out of range", models.BackupSchedule{Frequency: "monthly", Time: "02:00", DayOfMonth: intPtr(0)}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := validateSchedule(&c.schedule)
			if c.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestCreateScheduleComputesFirstRun(t *testing.T) {
	store := newFakeBackupStore()
	svc, _, _ := testService(store, newFakeObjectStore())

	schedule := &models.BackupSchedule{
		UserID: "u1", Frequency: "daily", Time: "23:00", Enabled: true, RetentionDays: 14,
	}
	require.NoError(t, svc.CreateSchedule(context.Background(), schedule))
	require.NotEmpty(t, schedule.ID)
	// now is pinned to 2025-06-15 10:30 UTC, so 23:00 is still ahead today
	require.Equal(t, time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC), schedule.NextRun)

	stored := store.schedules[schedule.ID]
	require.Equal(t, schedule.NextRun, stored.NextRun)
}

func TestCreateScheduleRejectsInvalid(t *testing.T) {
	store := newFakeBackupStore()
	svc, _, _ := testService(store, newFakeObjectStore())

	err := svc.CreateSchedule(context.Background(), &models.BackupSchedule{Frequency: "yearly", Time: "02:00"})
	require.Error(t, err)
	require.Empty(t, store.schedules)
}

func TestUpdateScheduleKeepsNextRunWhenTimingUnchanged(t *testing.T) {
	store := newFakeBackupStore()
	svc, _, _ := testService(store, newFakeObjectStore())

	original := &models.BackupSchedule{UserID: "u1", Frequency: "daily", Time: "23:00", Enabled: true}
	require.NoError(t, svc.CreateSchedule(context.Background(), original))
	firstRun := original.NextRun

	update := &models.BackupSchedule{
		ID: original.ID, Frequency: "daily", Time: "23:00", Enabled: false, RetentionDays: 7,
	}
	require.NoError(t, svc.UpdateSchedule(context.Background(), update))
	require.Equal(t, firstRun, update.NextRun, "non-timing edits keep the planned run")
	require.Equal(t, "u1", update.UserID, "ownership cannot be reassigned")

	retimed := &models.BackupSchedule{ID: original.ID, Frequency: "daily", Time: "06:00"}
	require.NoError(t, svc.UpdateSchedule(context.Background(), retimed))
	require.Equal(t, time.Date(2025, 6, 16, 6, 0, 0, 0, time.UTC), retimed.NextRun)
}

func TestRunScheduledBackups(t *testing.T) {
	store := newFakeBackupStore()
	objects := newFakeObjectStore()
	svc, _, _ := testService(store, objects)
	now := svc.now()

	due := now.Add(-time.Minute)
	store.schedules["sch-due"] = models.BackupSchedule{
		ID: "sch-due", UserID: "u1", Frequency: "daily", Time: "02:00",
		Enabled: true, NextRun: due,
	}
	store.schedules["sch-later"] = models.BackupSchedule{
		ID: "sch-later", UserID: "u1", Frequency: "daily", Time: "02:00",
		Enabled: true, NextRun: now.Add(time.Hour),
	}
	store.schedules["sch-off"] = models.BackupSchedule{
		ID: "sch-off", UserID: "u1", Frequency: "daily", Time: "02:00",
		Enabled: false, NextRun: due,
	}

	svc.RunScheduledBackups(context.Background())

	require.Len(t, store.records, 1, "only the due enabled schedule ran")
	for _, record := range store.records {
		require.Equal(t, models.BackupSuccess, record.Status)
		require.NotNil(t, record.ScheduleID)
		require.Equal(t, "sch-due", *record.ScheduleID)
	}

	advanced := store.schedules["sch-due"]
	require.NotNil(t, advanced.LastRun)
	require.Equal(t, now, *advanced.LastRun)
	require.True(t, advanced.NextRun.After(now))

	untouched := store.schedules["sch-later"]
	require.Equal(t, now.Add(time.Hour), untouched.NextRun)
}

func TestRunScheduledBackupsFailureDoesNotAdvance(t *testing.T) {
	store := newFakeBackupStore()
	objects := newFakeObjectStore()
	svc, exp, _ := testService(store, objects)
	exp.err = errors.New("export down")
	now := svc.now()

	due := now.Add(-time.Minute)
	store.schedules["sch-1"] = models.BackupSchedule{
		ID: "sch-1", UserID: "u1", Frequency: "daily", Time: "02:00",
		Enabled: true, NextRun: due,
	}

	svc.RunScheduledBackups(context.Background())

	schedule := store.schedules["sch-1"]
	require.Equal(t, due, schedule.NextRun, "failed run stays due for the next sweep")
	require.Nil(t, schedule.LastRun)
	for _, record := range store.records {
		require.Equal(t, models.BackupFailed, record.Status)
	}
}
