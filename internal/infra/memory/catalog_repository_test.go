package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"academy-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		CatalogLoader: NewStaticCatalogLoader(map[string]domain.CatalogItem{
			"lesson-1": sampleLesson(),
		}),
	}
	repo := NewCatalogRepository(loader, time.Minute)

	if _, err := repo.GetItem(context.Background(), "lesson-1"); err != nil {
		t.Fatalf("get item: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetItem(context.Background(), "lesson-1"); err != nil {
		t.Fatalf("get item 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryMiss(t *testing.T) {
	repo := NewCatalogRepository(NewStaticCatalogLoader(nil), time.Minute)
	if _, err := repo.GetItem(context.Background(), "nope"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
}

func TestCatalogRepositoryListByGrade(t *testing.T) {
	items := map[string]domain.CatalogItem{
		"lesson-1":   {ID: "lesson-1", Kind: domain.ItemLesson, Grade: "grade-10"},
		"lesson-2":   {ID: "lesson-2", Kind: domain.ItemLesson, Grade: "grade-10"},
		"sub-term-1": {ID: "sub-term-1", Kind: domain.ItemSubscription, Grade: "grade-11"},
	}
	repo := NewCatalogRepository(NewStaticCatalogLoader(items), time.Minute)

	list, err := repo.ListByGrade(context.Background(), "grade-10")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 items for grade-10, got %d", len(list))
	}
	if list[0].ID != "lesson-1" || list[1].ID != "lesson-2" {
		t.Fatalf("expected sorted IDs, got %s then %s", list[0].ID, list[1].ID)
	}
}

func TestCatalogRepositoryConcurrentFills(t *testing.T) {
	items := make(map[string]domain.CatalogItem)
	ids := make([]string, 0, 16)
	for i := 0; i < 16; i++ {
		id := fmt.Sprintf("lesson-%d", i)
		items[id] = domain.CatalogItem{ID: id, Kind: domain.ItemLesson, Grade: "grade-10"}
		ids = append(ids, id)
	}
	repo := NewCatalogRepository(NewStaticCatalogLoader(items), time.Minute)

	// Distinct IDs fill in parallel and all share the jitter source.
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := repo.GetItem(context.Background(), id); err != nil {
				t.Errorf("get %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		item, err := repo.GetItem(context.Background(), id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if item.ID != id {
			t.Fatalf("expected %s, got %s", id, item.ID)
		}
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadItem(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	l.calls++
	return l.CatalogLoader.LoadItem(ctx, itemID)
}

func sampleLesson() domain.CatalogItem {
	return domain.CatalogItem{
		ID:    "lesson-1",
		Kind:  domain.ItemLesson,
		Title: "Lesson One",
		Price: 100,
		Grade: "grade-10",
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Choices: []string{"3", "4"}, CorrectIndex: 1},
		},
	}
}
