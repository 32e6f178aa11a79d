package models

import (
	"testing"
	"time"
)

func TestJobStatus(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, s := range []JobStatus{StatusPending, StatusRunning, StatusDone, StatusFailed} {
			if !s.Valid() {
				t.Errorf("%s should be valid", s)
			}
		}
		if JobStatus("QUEUED").Valid() {
			t.Error("unknown status should be invalid")
		}
	})

	t.Run("Terminal", func(t *testing.T) {
		if StatusPending.Terminal() || StatusRunning.Terminal() {
			t.Error("PENDING and RUNNING are not terminal")
		}
		if !StatusDone.Terminal() || !StatusFailed.Terminal() {
			t.Error("DONE and FAILED are terminal")
		}
	})

	t.Run("CanTransition", func(t *testing.T) {
		tc := []struct {
			from JobStatus
			to   JobStatus
			want bool
		}{
			{StatusPending, StatusRunning, true},
			{StatusRunning, StatusDone, true},
			{StatusRunning, StatusFailed, true},
			{StatusPending, StatusDone, false},
			{StatusPending, StatusFailed, false},
			{StatusRunning, StatusPending, false},
			{StatusDone, StatusRunning, false},
			{StatusDone, StatusFailed, false},
			{StatusFailed, StatusRunning, false},
			{StatusFailed, StatusDone, false},
		}

		for _, tt := range tc {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("%s to %s: got %v, want %v", tt.from, tt.to, got, tt.want)
			}
		}
	})
}

func TestConversionJobValidate(t *testing.T) {
	valid := func() *ConversionJob {
		return &ConversionJob{
			JobID:             "job1",
			SpotifyPlaylistID: "pl1",
			PlaylistName:      "Mix",
			Status:            StatusPending,
			CreatedAt:         time.Now().UTC(),
		}
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("valid job rejected: %v", err)
	}

	tc := []struct {
		name   string
		mutate func(*ConversionJob)
	}{
		{name: "missing job id", mutate: func(j *ConversionJob) { j.JobID = "" }},
		{name: "missing playlist id", mutate: func(j *ConversionJob) { j.SpotifyPlaylistID = "" }},
		{name: "missing playlist name", mutate: func(j *ConversionJob) { j.PlaylistName = "" }},
		{name: "invalid status", mutate: func(j *ConversionJob) { j.Status = "QUEUED" }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			job := valid()
			tt.mutate(job)
			if err := job.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
