package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

var (
	topics  = []string{"connection pooling", "zero downtime deploys", "feature flags", "code review", "flaky tests", "on-call", "schema migrations", "caching"}
	remarks = []string{
		"Great write-up, thanks for sharing!",
		"I ran into the same issue last week.",
		"Could you expand on the second section?",
		"This does not match what I saw in production.",
		"Bookmarking this for the team.",
	}
)

type activity struct {
	name   string
	weight int
	run    func(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error
}

// activities are weighted so reads and likes dominate, as on a real blog.
func (s *Simulator) activities() []activity {
	return []activity{
		{"read_feed", 25, s.readFeed},
		{"read_article", 20, s.readArticle},
		{"like", 15, s.likeArticle(false)},
		{"special_like", 3, s.likeArticle(true)},
		{"comment", 8, s.commentOnArticle},
		{"reply", 5, s.replyToComment},
		{"vote", 8, s.voteOnComment},
		{"save", 4, s.saveArticle},
		{"follow_tag", 3, s.followTag},
		{"follow_user", 3, s.followUser},
		{"create_article", 6, s.createArticle},
	}
}

func (s *Simulator) worker(ctx context.Context, id int) {
	rng := rand.New(rand.NewSource(s.config.Seed + int64(id) + 1))
	acts := s.activities()
	total := 0
	for _, a := range acts {
		total += a.weight
	}

	for ctx.Err() == nil {
		user := s.users[rng.Intn(len(s.users))]
		a := pick(acts, rng.Intn(total))
		if err := a.run(ctx, rng, user); err != nil && ctx.Err() == nil {
			s.log.Debug().Err(err).Int("worker", id).Str("activity", a.name).Str("user", user.Username).Msg("Activity failed")
		}
	}
}

func pick(acts []activity, n int) activity {
	for _, a := range acts {
		if n < a.weight {
			return a
		}
		n -= a.weight
	}
	return acts[len(acts)-1]
}

func (s *Simulator) popularArticle(rng *rand.Rand) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.articles) == 0 {
		return "", false
	}
	return s.articles[s.zipfIndex(rng, len(s.articles))], true
}

func (s *Simulator) randomComment(rng *rand.Rand) (postedComment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.comments) == 0 {
		return postedComment{}, false
	}
	return s.comments[rng.Intn(len(s.comments))], true
}

func (s *Simulator) createArticle(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
	topic := topics[rng.Intn(len(topics))]
	tags := make([]string, 0, 3)
	for _, i := range rng.Perm(len(s.tags))[:1+rng.Intn(min(3, len(s.tags)))] {
		tags = append(tags, s.tags[i])
	}
	data := map[string]interface{}{
		"title":   fmt.Sprintf("Notes on %s", topic),
		"content": strings.Repeat(fmt.Sprintf("Some thoughts about %s from %s. ", topic, user.Username), 10+rng.Intn(40)),
		"tags":    tags,
	}

	var created struct {
		Slug string `json:"slug"`
	}
	if _, err := s.makeRequest(ctx, "create_article", user, http.MethodPost, "/api/articles", data, &created); err != nil {
		return err
	}
	s.mu.Lock()
	s.articles = append(s.articles, created.Slug)
	s.mu.Unlock()
	return nil
}

func (s *Simulator) readFeed(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
	endpoint := fmt.Sprintf("/api/feed?page=%d", 1+s.zipfIndex(rng, 5))
	_, err := s.makeRequest(ctx, "read_feed", user, http.MethodGet, endpoint, nil, nil)
	return err
}

func (s *Simulator) readArticle(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
	slug, ok := s.popularArticle(rng)
	if !ok {
		return nil
	}
	if _, err := s.makeRequest(ctx, "read_article", user, http.MethodGet, "/api/articles/"+slug, nil, nil); err != nil {
		return err
	}
	_, err := s.makeRequest(ctx, "read_comments", user, http.MethodGet, "/api/articles/"+slug+"/comments", nil, nil)
	return err
}

func (s *Simulator) likeArticle(special bool) func(context.Context, *rand.Rand, *SimulatedUser) error {
	op := "like"
	if special {
		op = "special_like"
	}
	return func(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
		slug, ok := s.popularArticle(rng)
		if !ok {
			return nil
		}
		data := map[string]bool{"special_like": special}
		_, err := s.makeRequest(ctx, op, user, http.MethodPost, "/api/articles/"+slug+"/like", data, nil)
		return err
	}
}

func (s *Simulator) saveArticle(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
	slug, ok := s.popularArticle(rng)
	if !ok {
		return nil
	}
	_, err := s.makeRequest(ctx, "save", user, http.MethodPost, "/api/articles/"+slug+"/save", nil, nil)
	return err
}

func (s *Simulator) postComment(ctx context.Context, op string, user *SimulatedUser, article string, body string, parent *uuid.UUID) error {
	data := map[string]interface{}{"body": body}
	if parent != nil {
		data["parent"] = parent
	}
	var created struct {
		ID uuid.UUID `json:"id"`
	}
	if _, err := s.makeRequest(ctx, op, user, http.MethodPost, "/api/articles/"+article+"/comments", data, &created); err != nil {
		return err
	}
	s.mu.Lock()
	s.comments = append(s.comments, postedComment{ID: created.ID, Article: article})
	s.mu.Unlock()
	return nil
}

func (s *Simulator) commentOnArticle(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
	slug, ok := s.popularArticle(rng)
	if !ok {
		return nil
	}
	return s.postComment(ctx, "comment", user, slug, remarks[rng.Intn(len(remarks))], nil)
}

func (s *Simulator) replyToComment(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
	c, ok := s.randomComment(rng)
	if !ok {
		return nil
	}
	return s.postComment(ctx, "reply", user, c.Article, remarks[rng.Intn(len(remarks))], &c.ID)
}

func (s *Simulator) voteOnComment(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
	c, ok := s.randomComment(rng)
	if !ok {
		return nil
	}
	data := map[string]bool{"downvote": rng.Float64() < 0.2}
	_, err := s.makeRequest(ctx, "vote", user, http.MethodPost, "/api/comments/"+c.ID.String()+"/vote", data, nil)
	return err
}

func (s *Simulator) followTag(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
	tag := s.tags[rng.Intn(len(s.tags))]
	_, err := s.makeRequest(ctx, "follow_tag", user, http.MethodPost, "/api/tags/"+tag+"/follow", nil, nil)
	return err
}

func (s *Simulator) followUser(ctx context.Context, rng *rand.Rand, user *SimulatedUser) error {
	other := s.users[rng.Intn(len(s.users))]
	if other.ID == user.ID {
		return nil
	}
	_, err := s.makeRequest(ctx, "follow_user", user, http.MethodPost, "/api/users/"+other.Slug+"/follow", nil, nil)
	return err
}
