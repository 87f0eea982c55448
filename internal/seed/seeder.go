package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/connectos/backend/internal/logger"
	"github.com/connectos/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder fills a development database with realistic users, stories,
// records and follow edges.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev populates the development database. Every seeded account logs in
// with the password "password123".
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Seeding users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Seeding stories and records...")
	stories, err := s.seedStories(users, 150)
	if err != nil {
		return fmt.Errorf("failed to seed stories: %w", err)
	}

	logger.Log.Info("Seeding follow graph...")
	if err := s.seedFollows(users, stories); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Seeding comments...")
	if err := s.seedComments(users, stories, 300); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	logger.Log.Info("Seed complete",
		zap.Int("users", len(users)),
		zap.Int("stories", len(stories)),
	)
	return nil
}

func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		u := models.User{
			Email:        fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Username:     username,
			DisplayName:  gofakeit.Name(),
			Bio:          gofakeit.Sentence(12),
			AvatarURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
			PasswordHash: &hashStr,
		}
		if err := s.db.Create(&u).Error; err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

var storyNouns = []string{
	"Workbench", "Garden", "Sailboat", "Typewriter", "Cabin", "Violin",
	"Motorcycle", "Greenhouse", "Darkroom", "Bookshop", "Lighthouse", "Loom",
}

func (s *Seeder) seedStories(users []models.User, n int) ([]models.Story, error) {
	types := []models.StoryType{
		models.StoryTypeObject, models.StoryTypePerson,
		models.StoryTypeSpace, models.StoryTypeEvent, models.StoryTypeOther,
	}

	stories := make([]models.Story, 0, n)
	for i := 0; i < n; i++ {
		owner := users[rand.Intn(len(users))]
		desc := gofakeit.Paragraph(1, 3, 10, " ")
		story := models.Story{
			UserID:      owner.ID,
			Name:        fmt.Sprintf("%s's %s", gofakeit.FirstName(), storyNouns[rand.Intn(len(storyNouns))]),
			Description: &desc,
			StoryType:   types[rand.Intn(len(types))],
			IsPublic:    rand.Float32() < 0.8,
			Location: &models.Location{
				City:    gofakeit.City(),
				State:   gofakeit.State(),
				Country: gofakeit.Country(),
			},
			CoverImageURL:  fmt.Sprintf("https://picsum.photos/seed/%d/800/600", i),
			LastActivityAt: gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now()),
		}
		if err := s.db.Create(&story).Error; err != nil {
			return nil, err
		}

		if err := s.seedRecords(&story, rand.Intn(8)); err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, nil
}

func (s *Seeder) seedRecords(story *models.Story, n int) error {
	for i := 0; i < n; i++ {
		desc := gofakeit.Sentence(16)
		record := models.Record{
			StoryID:     story.ID,
			Title:       gofakeit.Sentence(4),
			Description: &desc,
			IsPublic:    story.IsPublic,
			OccurredAt:  gofakeit.DateRange(story.LastActivityAt.AddDate(0, -3, 0), story.LastActivityAt),
		}
		if rand.Float32() < 0.6 {
			record.Media = models.MediaRefs{{
				ID:   gofakeit.UUID(),
				URL:  fmt.Sprintf("https://picsum.photos/seed/r%d/1200/800", i),
				Kind: models.MediaKindImage,
				Name: gofakeit.Word() + ".jpg",
			}}
		}
		if err := s.db.Create(&record).Error; err != nil {
			return err
		}
	}
	// Keep the cached counter in line with what was written.
	return s.db.Model(story).UpdateColumn("record_count", n).Error
}

func (s *Seeder) seedFollows(users []models.User, stories []models.Story) error {
	for _, u := range users {
		for _, target := range pickOthers(users, u.ID, 2+rand.Intn(8)) {
			edge := models.Follow{FollowerID: u.ID, FollowingID: target}
			if err := s.db.Create(&edge).Error; err != nil {
				return err
			}
		}

		// A few direct story follows, skipping the user's own stories.
		want := rand.Intn(4)
		for tries, added := 0, 0; tries < 20 && added < want; tries++ {
			story := stories[rand.Intn(len(stories))]
			if story.UserID == u.ID {
				continue
			}
			edge := models.StoryFollow{FollowerID: u.ID, StoryID: story.ID}
			if err := s.db.Create(&edge).Error; err != nil {
				continue
			}
			added++
		}
	}
	return nil
}

func (s *Seeder) seedComments(users []models.User, stories []models.Story, n int) error {
	for i := 0; i < n; i++ {
		story := stories[rand.Intn(len(stories))]
		if !story.IsPublic {
			continue
		}
		comment := models.Comment{
			StoryID: story.ID,
			UserID:  users[rand.Intn(len(users))].ID,
			Body:    gofakeit.Sentence(10 + rand.Intn(20)),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
	}
	return nil
}

// pickOthers selects up to n distinct user ids, never including selfID.
func pickOthers(users []models.User, selfID string, n int) []string {
	perm := rand.Perm(len(users))
	out := make([]string, 0, n)
	for _, idx := range perm {
		if users[idx].ID == selfID {
			continue
		}
		out = append(out, users[idx].ID)
		if len(out) == n {
			break
		}
	}
	return out
}
