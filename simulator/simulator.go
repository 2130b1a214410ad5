package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"inkwell/internal/engine"
	"inkwell/internal/logging"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"
)

const defaultZipfS = 1.07

var defaultTags = []string{"golang", "databases", "distributed systems", "frontend", "career", "open source", "security", "testing"}

type SimConfig struct {
	NumUsers       int
	NumArticles    int
	Workers        int
	SimulationTime time.Duration
	ZipfS          float64
	EngineURL      string
	Tags           []string
	Seed           int64
}

// Seeder writes users and tags straight to storage, since the API has no
// registration endpoint.
type Seeder interface {
	SaveUser(ctx context.Context, user *models.User) error
	SaveTag(ctx context.Context, tag *models.Tag) error
}

// SimulatedUser is a seeded account plus the bearer token the workers send.
type SimulatedUser struct {
	ID       uuid.UUID
	Username string
	Slug     string
	Token    string
}

type postedComment struct {
	ID      uuid.UUID
	Article string
}

type SimulationStats struct {
	mu            sync.Mutex
	StartTime     time.Time
	TotalRequests int64
	StatusClasses map[string]int64
	latencies     map[string][]time.Duration
}

func newStats() *SimulationStats {
	return &SimulationStats{
		StartTime:     time.Now(),
		StatusClasses: make(map[string]int64),
		latencies:     make(map[string][]time.Duration),
	}
}

func (st *SimulationStats) record(op string, status int, latency time.Duration, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.TotalRequests++
	st.StatusClasses[statusClass(status, err)]++
	st.latencies[op] = append(st.latencies[op], latency)
}

func statusClass(status int, err error) string {
	if status == 0 {
		if err != nil {
			return "error"
		}
		return "unknown"
	}
	return fmt.Sprintf("%dxx", status/100)
}

type Simulator struct {
	config SimConfig
	seeder Seeder
	client *http.Client
	stats  *SimulationStats
	log    zerolog.Logger

	mu       sync.RWMutex
	users    []*SimulatedUser
	tags     []string
	articles []string
	comments []postedComment
}

func NewSimulator(config SimConfig, seeder Seeder) *Simulator {
	if config.ZipfS <= 1 {
		config.ZipfS = defaultZipfS
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.NumUsers < 2 {
		config.NumUsers = 2
	}
	if len(config.Tags) == 0 {
		config.Tags = defaultTags
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	config.EngineURL = strings.TrimRight(config.EngineURL, "/")

	return &Simulator{
		config: config,
		seeder: seeder,
		stats:  newStats(),
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logging.Component("simulator"),
	}
}

// Seed creates the tag set and the user accounts, then mints a token for each user.
func (s *Simulator) Seed(ctx context.Context) error {
	for _, name := range s.config.Tags {
		tag := &models.Tag{ID: mustV7(), Name: name, Slug: engine.Slugify(name)}
		if err := s.seeder.SaveTag(ctx, tag); err != nil && !utils.IsErrorCode(err, utils.ErrDuplicate) {
			return fmt.Errorf("seed tag %q: %w", name, err)
		}
		s.tags = append(s.tags, tag.Slug)
	}

	run := strings.ToLower(shortuuid.New()[:6])
	for i := 0; i < s.config.NumUsers; i++ {
		username := fmt.Sprintf("sim_%s_%d", run, i)
		user := &models.User{
			ID:          mustV7(),
			Username:    username,
			Email:       username + "@sim.inkwell.local",
			DisplayName: fmt.Sprintf("Sim User %d", i),
			Slug:        engine.Slugify(username),
		}
		if err := s.seeder.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", username, err)
		}
		token, err := middleware.GenerateToken(user.ID)
		if err != nil {
			return fmt.Errorf("mint token for %s: %w", username, err)
		}
		s.users = append(s.users, &SimulatedUser{ID: user.ID, Username: username, Slug: user.Slug, Token: token})
	}

	s.log.Info().Int("users", len(s.users)).Int("tags", len(s.tags)).Msg("Seeded simulation data")
	return nil
}

// Run seeds, publishes the initial articles and drives the API until ctx is
// done or the configured duration elapses.
func (s *Simulator) Run(ctx context.Context) error {
	if s.config.SimulationTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.SimulationTime)
		defer cancel()
	}

	if err := s.Seed(ctx); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(s.config.Seed))
	for i := 0; i < s.config.NumArticles; i++ {
		if err := s.createArticle(ctx, rng, s.users[i%len(s.users)]); err != nil {
			s.log.Warn().Err(err).Int("article", i).Msg("Initial article failed")
		}
	}
	s.log.Info().Int("articles", len(s.snapshotArticles())).Msg("Initial articles published")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.worker(ctx, id)
		}(i)
	}
	go s.collectMetrics(ctx)

	wg.Wait()
	return nil
}

// makeRequest sends an authenticated JSON request and records its latency
// under op. A status >= 400 is returned as an error along with the status.
func (s *Simulator) makeRequest(ctx context.Context, op string, user *SimulatedUser, method, endpoint string, data, out interface{}) (int, error) {
	var body io.Reader
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.EngineURL+endpoint, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+user.Token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, ctx.Err()
		}
		s.stats.record(op, 0, time.Since(start), err)
		return 0, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	s.stats.record(op, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("%s %s failed with status %d: %s", method, endpoint, resp.StatusCode, bytes.TrimSpace(payload))
	}
	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", op, err)
		}
	}
	return resp.StatusCode, nil
}

// zipfIndex picks an index in [0, n) where low indexes are far more likely.
func (s *Simulator) zipfIndex(rng *rand.Rand, n int) int {
	if n <= 1 {
		return 0
	}
	zipf := rand.NewZipf(rng, s.config.ZipfS, 1, uint64(n-1))
	return int(zipf.Uint64())
}

func (s *Simulator) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sum := s.Summary()
			s.log.Info().
				Dur("elapsed", sum.Elapsed).
				Int64("requests", sum.TotalRequests).
				Float64("req_per_sec", math.Round(sum.RequestsPerSecond*100)/100).
				Interface("status", sum.StatusClasses).
				Int("articles", len(s.snapshotArticles())).
				Msg("Simulation progress")
		}
	}
}

// OpSummary is the latency distribution of one operation.
type OpSummary struct {
	Op    string
	Count int
	P50   time.Duration
	P99   time.Duration
}

type Summary struct {
	Elapsed           time.Duration
	TotalRequests     int64
	RequestsPerSecond float64
	StatusClasses     map[string]int64
	Operations        []OpSummary
}

func (s *Simulator) Summary() Summary {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	elapsed := time.Since(s.stats.StartTime)
	sum := Summary{
		Elapsed:       elapsed,
		TotalRequests: s.stats.TotalRequests,
		StatusClasses: make(map[string]int64, len(s.stats.StatusClasses)),
	}
	if elapsed > 0 {
		sum.RequestsPerSecond = float64(s.stats.TotalRequests) / elapsed.Seconds()
	}
	for class, n := range s.stats.StatusClasses {
		sum.StatusClasses[class] = n
	}
	for op, lat := range s.stats.latencies {
		sorted := append([]time.Duration(nil), lat...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		sum.Operations = append(sum.Operations, OpSummary{
			Op:    op,
			Count: len(sorted),
			P50:   percentile(sorted, 0.50),
			P99:   percentile(sorted, 0.99),
		})
	}
	sort.Slice(sum.Operations, func(i, j int) bool { return sum.Operations[i].Op < sum.Operations[j].Op })
	return sum
}

// percentile uses the nearest-rank method on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// Print writes the summary as two aligned tables.
func (sum Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Simulation finished after %v: %d requests (%.2f req/sec)\n\n",
		sum.Elapsed.Round(time.Millisecond), sum.TotalRequests, sum.RequestsPerSecond)

	classes := make([]string, 0, len(sum.StatusClasses))
	for class := range sum.StatusClasses {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tREQUESTS")
	for _, class := range classes {
		fmt.Fprintf(tw, "%s\t%d\n", class, sum.StatusClasses[class])
	}
	tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tCOUNT\tP50\tP99")
	for _, op := range sum.Operations {
		fmt.Fprintf(tw, "%s\t%d\t%v\t%v\n", op.Op, op.Count, op.P50.Round(time.Microsecond), op.P99.Round(time.Microsecond))
	}
	tw.Flush()
}

func (s *Simulator) snapshotArticles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.articles...)
}

func mustV7() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
