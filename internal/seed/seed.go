package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"ripple/internal/models"
	"ripple/internal/repository"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers           int     `yaml:"users"`
	NumPosts           int     `yaml:"posts"`
	MaxCommentsPerPost int     `yaml:"max_comments_per_post"`
	LikeRatio          float64 `yaml:"like_ratio"`
	MaxDays            int     `yaml:"max_days"`
	ShouldClean        bool    `yaml:"clean"`
}

// DefaultOptions is a medium-sized demo dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:           25,
		NumPosts:           120,
		MaxCommentsPerPost: 6,
		LikeRatio:          0.15,
		MaxDays:            90,
		ShouldClean:        true,
	}
}

// LoadPreset reads an Options preset from a YAML file. Fields left out of the
// file keep their default values.
func LoadPreset(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path) // #nosec G304: operator-supplied preset path
	if err != nil {
		return opts, fmt.Errorf("read preset: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse preset: %w", err)
	}
	return opts, nil
}

// Seed populates the database with demo users, posts, comments and likes,
// then rebuilds the denormalized engagement counters so they match the rows.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("seeding: %d users, %d posts", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[r.Intn(len(users))]
		posts = append(posts, f.BuildPost(author, opts.MaxDays))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("seeded %d posts", len(posts))

	comments := 0
	for _, post := range posts {
		n := r.Intn(opts.MaxCommentsPerPost + 1)
		for i := 0; i < n; i++ {
			commenter := users[r.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			comments++
		}
	}
	log.Printf("seeded %d comments", comments)

	likes := 0
	for _, post := range posts {
		for _, user := range users {
			if r.Float64() < opts.LikeRatio {
				if err := f.CreateLike(user, post); err != nil {
					return fmt.Errorf("create like: %w", err)
				}
				likes++
			}
		}
	}
	log.Printf("seeded %d likes", likes)

	// Comments and likes were inserted as raw rows; sync the counters once at
	// the end instead of paying per-row counter updates.
	postRepo := repository.NewPostRepository(db)
	if err := postRepo.RecountEngagement(context.Background()); err != nil {
		return fmt.Errorf("recount engagement: %w", err)
	}

	log.Printf("seeding complete; all accounts use password %q", SeedPassword)
	return nil
}

func clearData(db *gorm.DB) error {
	// Children before parents.
	for _, table := range []string{"post_likes", "comments", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
