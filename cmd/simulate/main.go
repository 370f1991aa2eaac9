package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/appointment"
	"github.com/hackgods/vet-appointment-scheduling/internal/config"
	"github.com/hackgods/vet-appointment-scheduling/internal/logger"
)

const timestampLayout = "2006-01-02T15:04:05"

// SimConfig is read from SIM_* variables. Business hours come from the same
// BUSINESS_* variables as the api-server.
type SimConfig struct {
	APIBaseURL   string        `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
	Token        string        `envconfig:"TOKEN"`
	Duration     time.Duration `envconfig:"DURATION" default:"30s"`
	Workers      int           `envconfig:"WORKERS" default:"20"`
	Days         int           `envconfig:"DAYS" default:"3"`
	HotSlots     int           `envconfig:"HOT_SLOTS" default:"40"` // small pool forces contention
	BookingRatio float64       `envconfig:"BOOKING_RATIO" default:"0.6"`
	CancelRatio  float64       `envconfig:"CANCEL_RATIO" default:"0.1"`
	ReadRatio    float64       `envconfig:"READ_RATIO" default:"0.3"`
}

type target struct {
	PractitionerID uuid.UUID
	At             time.Time
}

type DataPool struct {
	Practitioners []uuid.UUID
	Targets       []target
	mu            sync.RWMutex
	appointments  []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) GetRandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.IntN(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     atomic.Int64
	Success   atomic.Int64
	Rejected  atomic.Int64
	Error     atomic.Int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, success, rejected bool) {
	om.Total.Add(1)
	switch {
	case success:
		om.Success.Add(1)
	case rejected:
		om.Rejected.Add(1)
	default:
		om.Error.Add(1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95, max time.Duration) {
	om.mu.Lock()
	latencies := slices.Clone(om.latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))
	p50 = latencies[len(latencies)*50/100]
	p95 = latencies[min(len(latencies)*95/100, len(latencies)-1)]
	max = latencies[len(latencies)-1]
	return avg, p50, p95, max
}

type Metrics struct {
	Booking      OperationMetrics
	Cancel       OperationMetrics
	Availability OperationMetrics
}

type Simulator struct {
	config  SimConfig
	policy  appointment.Policy
	pool    *DataPool
	client  *http.Client
	log     *zap.Logger
	metrics Metrics
}

func main() {
	log, err := logger.New("dev", "info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	_ = godotenv.Load()

	var cfg SimConfig
	if err := envconfig.Process("SIM", &cfg); err != nil {
		log.Fatal("invalid simulator config", zap.Error(err))
	}
	if err := validateConfig(cfg); err != nil {
		log.Fatal("invalid simulator config", zap.Error(err))
	}

	var business config.BusinessHours
	if err := envconfig.Process("BUSINESS", &business); err != nil {
		log.Fatal("invalid business hours", zap.Error(err))
	}
	loc, err := business.Location()
	if err != nil {
		log.Fatal("invalid business hours", zap.Error(err))
	}
	policy, err := appointment.NewPolicy(business.OpeningHour, business.ClosingHour, business.SlotMinutes, business.CancelNoticeHours, loc)
	if err != nil {
		log.Fatal("invalid business hours", zap.Error(err))
	}

	sim := &Simulator{
		config: cfg,
		policy: policy,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sim.pool, err = sim.loadDataPool(ctx)
	if err != nil {
		log.Fatal("load data pool", zap.Error(err))
	}
	log.Info("data pool loaded",
		zap.Int("practitioners", len(sim.pool.Practitioners)),
		zap.Int("targets", len(sim.pool.Targets)),
	)

	sim.Run()
	sim.PrintReport()

	doubles, err := sim.verify(context.Background())
	if err != nil {
		log.Fatal("verification failed", zap.Error(err))
	}
	if doubles > 0 {
		log.Error("double bookings detected", zap.Int("count", doubles))
		os.Exit(2)
	}
	log.Info("no double bookings")
}

func validateConfig(cfg SimConfig) error {
	switch {
	case cfg.Workers <= 0:
		return fmt.Errorf("SIM_WORKERS must be > 0")
	case cfg.Duration <= 0:
		return fmt.Errorf("SIM_DURATION must be > 0")
	case cfg.Days <= 0:
		return fmt.Errorf("SIM_DAYS must be > 0")
	case cfg.HotSlots <= 0:
		return fmt.Errorf("SIM_HOT_SLOTS must be > 0")
	case cfg.BookingRatio+cfg.CancelRatio+cfg.ReadRatio <= 0:
		return fmt.Errorf("at least one SIM_*_RATIO must be positive")
	}
	return nil
}

// loadDataPool fetches active practitioners and picks a small set of future
// slots that every worker competes for.
func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	resp, err := s.do(ctx, http.MethodGet, "/api/v1/practitioners?active=true", nil)
	if err != nil {
		return nil, fmt.Errorf("list practitioners: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list practitioners: status %d", resp.StatusCode)
	}

	var practitioners []struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&practitioners); err != nil {
		return nil, fmt.Errorf("decode practitioners: %w", err)
	}
	if len(practitioners) == 0 {
		return nil, fmt.Errorf("no active practitioners; run cmd/seed first")
	}

	pool := &DataPool{}
	for _, p := range practitioners {
		pool.Practitioners = append(pool.Practitioners, p.ID)
	}

	var all []target
	today := time.Now().In(s.policy.Location)
	for d := 1; d <= s.config.Days; d++ {
		for slot := range s.policy.EachSlot(today.AddDate(0, 0, d)) {
			for _, id := range pool.Practitioners {
				all = append(all, target{PractitionerID: id, At: slot})
			}
		}
	}
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	pool.Targets = all[:min(s.config.HotSlots, len(all))]

	return pool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info("starting simulation",
		zap.Duration("duration", s.config.Duration),
		zap.Int("workers", s.config.Workers),
	)

	total := s.config.BookingRatio + s.config.CancelRatio + s.config.ReadRatio
	bookingCut := s.config.BookingRatio / total
	cancelCut := bookingCut + s.config.CancelRatio/total

	var wg sync.WaitGroup
	for i := range s.config.Workers {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(workerID)))
			for ctx.Err() == nil {
				switch r := rng.Float64(); {
				case r < bookingCut:
					s.doBooking(ctx, rng)
				case r < cancelCut:
					s.doCancel(ctx, rng)
				default:
					s.doAvailability(ctx, rng)
				}
			}
		}(i)
	}

	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.IntN(len(s.pool.Targets))]

	body, _ := json.Marshal(map[string]string{
		"subject_id":      uuid.NewString(),
		"practitioner_id": t.PractitionerID.String(),
		"scheduled_at":    t.At.Format(timestampLayout),
		"type":            "consultation",
	})

	start := time.Now()
	resp, err := s.do(ctx, http.MethodPost, "/api/v1/appointments", body)
	latency := time.Since(start)

	success, rejected := false, false
	if err == nil {
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusCreated:
			success = true
			var created struct {
				ID uuid.UUID `json:"id"`
			}
			if json.NewDecoder(resp.Body).Decode(&created) == nil && created.ID != uuid.Nil {
				s.pool.AddAppointment(created.ID)
			}
		case http.StatusConflict, http.StatusServiceUnavailable:
			rejected = true
		}
	}

	s.metrics.Booking.Record(latency, success, rejected)
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()
	resp, err := s.do(ctx, http.MethodPost, "/api/v1/appointments/"+id.String()+"/cancel", nil)
	latency := time.Since(start)

	success, rejected := false, false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
		rejected = resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity
	}

	s.metrics.Cancel.Record(latency, success, rejected)
}

func (s *Simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.IntN(len(s.pool.Targets))]
	path := fmt.Sprintf("/api/v1/practitioners/%s/availability?date=%s", t.PractitionerID, t.At.Format(time.DateOnly))

	start := time.Now()
	resp, err := s.do(ctx, http.MethodGet, path, nil)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Availability.Record(latency, success, false)
}

// verify lists every practitioner's live appointments and counts pairs that
// sit closer than one slot interval.
func (s *Simulator) verify(ctx context.Context) (int, error) {
	doubles := 0
	for _, id := range s.pool.Practitioners {
		resp, err := s.do(ctx, http.MethodGet, "/api/v1/appointments?status=scheduled&practitioner_id="+id.String(), nil)
		if err != nil {
			return 0, err
		}
		var appts []struct {
			ScheduledAt string `json:"scheduled_at"`
		}
		err = json.NewDecoder(resp.Body).Decode(&appts)
		resp.Body.Close()
		if err != nil {
			return 0, fmt.Errorf("decode appointments: %w", err)
		}

		times := make([]time.Time, 0, len(appts))
		for _, a := range appts {
			t, err := time.ParseInLocation(timestampLayout, a.ScheduledAt, s.policy.Location)
			if err != nil {
				return 0, err
			}
			times = append(times, t)
		}
		slices.SortFunc(times, time.Time.Compare)
		for i := 1; i < len(times); i++ {
			if times[i].Sub(times[i-1]) < s.policy.SlotInterval() {
				doubles++
				s.log.Error("double booking",
					zap.String("practitioner_id", id.String()),
					zap.Time("first", times[i-1]),
					zap.Time("second", times[i]),
				)
			}
		}
	}
	return doubles, nil
}

func (s *Simulator) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(s.config.APIBaseURL, "/")+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.Token)
	}
	return s.client.Do(req)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Contended slots: %d\n", len(s.pool.Targets))
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("Availability", &s.metrics.Availability)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := om.Total.Load()
	if total == 0 {
		return
	}

	success := om.Success.Load()
	rejected := om.Rejected.Load()
	failed := om.Error.Load()
	avg, p50, p95, max := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if rejected > 0 {
		fmt.Printf("  Rejected: %d (%.1f%%)\n", rejected, float64(rejected)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s p50=%s p95=%s max=%s\n",
		avg.Round(time.Millisecond), p50.Round(time.Millisecond),
		p95.Round(time.Millisecond), max.Round(time.Millisecond))
	fmt.Println()
}
