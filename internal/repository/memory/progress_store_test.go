package memory

import (
	"sync"
	"testing"

	"lingo_flow_backend/internal/model"
)

func TestGetOrCreateReturnsExisting(t *testing.T) {
	store := NewProgressStore()

	first, err := store.GetOrCreate(1, "lesson-1", 30)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.Status != model.StatusNotStarted || first.MaxScore != 30 {
		t.Fatalf("unexpected fresh record: %+v", first)
	}

	_, err = store.Mutate(1, "lesson-1", 30, func(p *model.LessonProgress) error {
		p.Score = 10
		p.Status = model.StatusInProgress
		return nil
	})
	if err != nil {
		t.Fatalf("mutate failed: %v", err)
	}

	again, err := store.GetOrCreate(1, "lesson-1", 30)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if again.Score != 10 || again.Status != model.StatusInProgress {
		t.Fatalf("GetOrCreate must not reset state: %+v", again)
	}
}

func TestMutateSerializesConcurrentUpdates(t *testing.T) {
	store := NewProgressStore()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := store.Mutate(1, "lesson-1", 30, func(p *model.LessonProgress) error {
				p.Score++
				return nil
			})
			if err != nil {
				t.Errorf("mutate failed: %v", err)
			}
		}()
	}
	wg.Wait()

	p, err := store.Find(1, "lesson-1")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if p.Score != workers {
		t.Fatalf("lost update: score = %d, want %d", p.Score, workers)
	}
}

func TestMutateReturnsCopies(t *testing.T) {
	store := NewProgressStore()

	returned, err := store.Mutate(1, "lesson-1", 10, func(p *model.LessonProgress) error {
		p.Exercises = append(p.Exercises, model.ExerciseProgress{ExerciseID: "ex-1", Attempts: 1})
		return nil
	})
	if err != nil {
		t.Fatalf("mutate failed: %v", err)
	}

	// 修改返回值不应影响存储内的记录
	returned.Exercises[0].Attempts = 99

	stored, _ := store.Find(1, "lesson-1")
	if stored.Exercises[0].Attempts != 1 {
		t.Fatalf("store leaked internal state: %+v", stored.Exercises[0])
	}
}

func TestCountPassed(t *testing.T) {
	store := NewProgressStore()

	for _, tc := range []struct {
		lessonID string
		status   model.ProgressStatus
	}{
		{"l1", model.StatusPassed},
		{"l2", model.StatusInProgress},
		{"l3", model.StatusPassed},
	} {
		_, err := store.Mutate(1, tc.lessonID, 10, func(p *model.LessonProgress) error {
			p.Status = tc.status
			return nil
		})
		if err != nil {
			t.Fatalf("mutate failed: %v", err)
		}
	}
	// 其他用户的记录不计入
	_, _ = store.Mutate(2, "l1", 10, func(p *model.LessonProgress) error {
		p.Status = model.StatusPassed
		return nil
	})

	count, err := store.CountPassed(1)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountPassed = %d, want 2", count)
	}
}
