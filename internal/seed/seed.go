package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with realistic demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder with default factory options.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, SeedOptions{}),
	}
}

// NewSeederWithOptions creates a Seeder with explicit factory options.
func NewSeederWithOptions(db *gorm.DB, opts SeedOptions) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
	}
}

// ClearAll truncates every seeded table and resets identities.
func (s *Seeder) ClearAll() error {
	log.Println("clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, saves, posts, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// SeedUsers creates count users. A few fixed accounts come first so local
// logins stay predictable across reseeds; the rest are generated. One in
// ten generated accounts is left unverified to exercise the publish gate.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	fixed := []string{"alice", "bob", "test"}
	if count >= len(fixed) {
		for _, name := range fixed {
			name := name
			user, err := s.factory.CreateUser(func(u *models.User) {
				u.Username = name
				u.Email = fmt.Sprintf("%s@example.com", name)
				u.Bio = "One of the originals."
				u.Avatar = fmt.Sprintf("https://i.pravatar.cc/150?u=%s", name)
			})
			if err != nil {
				log.Printf("failed to create fixed user %s: %v", name, err)
				continue
			}
			users = append(users, user)
		}
	}

	for i := len(users); i < count; i++ {
		unverified := i%10 == 9
		user, err := s.factory.CreateUser(func(u *models.User) {
			u.EmailVerified = !unverified
		})
		if err != nil {
			log.Printf("failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("created %d users...", i)
		}
	}

	return users, nil
}

// SeedPosts creates count posts spread over the verified users.
func (s *Seeder) SeedPosts(users []*models.User, count int) ([]*models.Post, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	authors := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.EmailVerified {
			authors = append(authors, u)
		}
	}
	if len(authors) == 0 {
		return nil, fmt.Errorf("no verified users to author posts")
	}

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		post, err := s.factory.CreatePost(authors[r.Intn(len(authors))])
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)

		if i > 0 && i%100 == 0 {
			log.Printf("created %d posts...", i)
		}
	}

	return posts, nil
}

// SeedEngagement scatters comments, likes, and saves over the given posts.
// Counters move through the factory so the persisted comment_count matches
// the comments table.
func (s *Seeder) SeedEngagement(users []*models.User, posts []*models.Post) error {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	for _, post := range posts {
		for i := 0; i < r.Intn(6); i++ {
			commenter := users[r.Intn(len(users))]
			if _, err := s.factory.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("seed comment on post %d: %w", post.ID, err)
			}
		}

		// Like and save sets are sampled without replacement per post.
		for _, idx := range r.Perm(len(users))[:r.Intn(len(users)/2+1)] {
			if err := s.factory.CreateLike(users[idx], post); err != nil {
				return fmt.Errorf("seed like on post %d: %w", post.ID, err)
			}
		}
		for _, idx := range r.Perm(len(users))[:r.Intn(len(users)/4+1)] {
			if err := s.factory.CreateSave(users[idx], post); err != nil {
				return fmt.Errorf("seed save on post %d: %w", post.ID, err)
			}
		}
	}

	return nil
}

// Seed runs the full pipeline: users, posts, engagement.
func (s *Seeder) Seed(numUsers, numPosts int) error {
	log.Printf("starting database seeding with %d users and %d posts...", numUsers, numPosts)

	users, err := s.SeedUsers(numUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	posts, err := s.SeedPosts(users, numPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	if err := s.SeedEngagement(users, posts); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}
	log.Println("database seeding completed")
	return nil
}
