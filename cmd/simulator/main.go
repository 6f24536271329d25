package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/signalsfoundry/traffic-simulator/core"
	"github.com/signalsfoundry/traffic-simulator/internal/logging"
	"github.com/signalsfoundry/traffic-simulator/internal/observability"
	"github.com/signalsfoundry/traffic-simulator/model"
	"github.com/signalsfoundry/traffic-simulator/timectrl"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	trc "go.opentelemetry.io/otel/trace"
)

func main() {
	steps := flag.Int("steps", 3000, "number of ticks to run; 0 runs until interrupted")
	delta := flag.Duration("delta", 100*time.Millisecond, "simulated time advanced per tick")
	seed := flag.Int64("seed", 1, "random seed; identical seeds reproduce identical runs")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables the server")
	summaryEvery := flag.Int("summary-every", 0, "print a world summary every N ticks; 0 disables")
	trace := flag.Bool("trace", false, "force tracing on, regardless of SIM_TRACING_ENABLED")
	printMap := flag.Bool("map", false, "render an ASCII map of the final world state")
	flag.Parse()

	// .env is optional; environment variables win when both are set.
	_ = godotenv.Load()

	log := logging.NewFromEnv()
	ctx := context.Background()

	collector, err := observability.NewSimulationCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	loop, err := observability.NewLoopCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise loop metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	tracingCfg := observability.TracingConfigFromEnv()
	if *trace {
		tracingCfg.Enabled = true
	}
	shutdownTracing, err := observability.InitTracing(ctx, tracingCfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	world := core.New(core.Config{
		Seed:    *seed,
		Logger:  log,
		Metrics: collector,
	})
	core.BuildDemoWorld(world)

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(time.Now().UTC(), *delta, mode)

	tracer := otel.Tracer("traffic-simulator")
	runCtx, runSpan := tracer.Start(ctx, "simulation.run",
		trc.WithAttributes(attribute.Int64("seed", *seed)),
	)
	defer runSpan.End()

	ticks := 0
	tc.AddListener(func(_ time.Time, dt float64) {
		_, span := tracer.Start(runCtx, "world.tick",
			trc.WithAttributes(attribute.Int("tick", ticks)),
		)
		started := time.Now()
		world.Tick(dt)
		loop.ObserveTick(time.Since(started), world.Clock())
		span.SetAttributes(
			attribute.Float64("sim.clock_seconds", world.Clock()),
			attribute.Int("sim.cars", world.CarCount()),
		)
		span.End()

		ticks++
		if *summaryEvery > 0 && ticks%*summaryEvery == 0 {
			fmt.Println(world.Summary())
		}
	})

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info(ctx, "starting simulation",
		logging.Int("steps", *steps),
		logging.String("delta", delta.String()),
		logging.Any("seed", *seed),
		logging.Any("accelerated", *accelerated),
	)

	executed := tc.Run(stopCtx, *steps)

	log.Info(ctx, "simulation finished", logging.Int("ticks", executed))
	fmt.Println(world.Summary())
	if *printMap {
		fmt.Print(renderMap(world, 72, 28))
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func serveMetrics(addr string, collector *observability.SimulationCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// renderMap projects the world onto a character grid: intersections are '+',
// roads '.', residences 'R', factories 'F', shops 'S', and vehicles '*'.
// Buildings and vehicles overwrite road and intersection glyphs.
func renderMap(w *core.World, width, height int) string {
	net := w.Network()
	ids := net.IntersectionIDs()
	if len(ids) == 0 {
		return "(empty world)\n"
	}

	first := true
	var lo, hi model.Position
	for _, id := range ids {
		pos, ok := net.IntersectionPosition(id)
		if !ok {
			continue
		}
		if first {
			lo, hi = pos, pos
			first = false
			continue
		}
		if pos.X < lo.X {
			lo.X = pos.X
		}
		if pos.Z < lo.Z {
			lo.Z = pos.Z
		}
		if pos.X > hi.X {
			hi.X = pos.X
		}
		if pos.Z > hi.Z {
			hi.Z = pos.Z
		}
	}
	spanX := hi.X - lo.X
	spanZ := hi.Z - lo.Z
	if spanX <= 0 {
		spanX = 1
	}
	if spanZ <= 0 {
		spanZ = 1
	}

	grid := make([][]byte, height)
	for i := range grid {
		grid[i] = make([]byte, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	// The ground plane is XZ; Y is altitude and is ignored.
	plot := func(pos model.Position, glyph byte) {
		col := int((pos.X - lo.X) / spanX * float64(width-1))
		row := int((pos.Z - lo.Z) / spanZ * float64(height-1))
		if col < 0 || col >= width || row < 0 || row >= height {
			return
		}
		grid[row][col] = glyph
	}

	for _, rid := range net.RoadIDs() {
		road, ok := net.Road(rid)
		if !ok {
			continue
		}
		startPos, okStart := net.IntersectionPosition(road.Start)
		endPos, okEnd := net.IntersectionPosition(road.End)
		if !okStart || !okEnd {
			continue
		}
		samples := int(road.Length)*2 + 2
		for i := 0; i <= samples; i++ {
			plot(startPos.Lerp(endPos, float64(i)/float64(samples)), '.')
		}
	}
	for _, id := range ids {
		if pos, ok := net.IntersectionPosition(id); ok {
			plot(pos, '+')
		}
	}
	plotBuilding := func(at model.IntersectionID, glyph byte) {
		if pos, ok := net.IntersectionPosition(at); ok {
			plot(pos, glyph)
		}
	}
	for _, id := range w.ResidenceIDs() {
		if r, ok := w.Residence(id); ok {
			plotBuilding(r.Intersection, 'R')
		}
	}
	for _, id := range w.FactoryIDs() {
		if f, ok := w.Factory(id); ok {
			plotBuilding(f.Intersection, 'F')
		}
	}
	for _, id := range w.ShopIDs() {
		if s, ok := w.Shop(id); ok {
			plotBuilding(s.Intersection, 'S')
		}
	}
	for _, id := range w.CarIDs() {
		if c, ok := w.Car(id); ok {
			plot(c.Position, '*')
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}
