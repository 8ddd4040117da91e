package main

import (
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/kass/searoute/pkg/config"
	"github.com/kass/searoute/pkg/network"
	"github.com/kass/searoute/pkg/pathfind"
	"github.com/kass/searoute/pkg/router"
	"github.com/kass/searoute/pkg/server"
	"github.com/kass/searoute/pkg/units"
)

var (
	networkFile string
	cacheFile   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "searoute",
	Short: "Approximate maritime routes over a sea-lane network",
	Long:  `Snaps arbitrary coordinates onto a network of navigable sea lanes and returns shortest-path routes as measured GeoJSON lines.`,
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Compute a route between two points",
	Long:  `Snap origin and destination onto the sea-lane network and print the shortest route as a GeoJSON feature.`,
	Run:   runRoute,
}

var snapCmd = &cobra.Command{
	Use:   "snap",
	Short: "Snap a point onto the network",
	Long:  `Print the network vertex an arbitrary point would enter the network at.`,
	Run:   runSnap,
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run routing benchmarks",
	Long:  `Execute random routing requests over the loaded network with a worker pool.`,
	Run:   runBench,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the routing API over HTTP",
	Run:   runServe,
}

var (
	fromArg    string
	toArg      string
	pointArg   string
	unitsArg   string
	radiusKm   float64
	numQueries int
	numWorkers int
	configPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&networkFile, "network", "f", "marnet.geojson", "Sea-lane network GeoJSON path")
	rootCmd.PersistentFlags().StringVarP(&cacheFile, "cache", "c", "", "Binary network cache path (used instead of GeoJSON when set)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	routeCmd.Flags().StringVar(&fromArg, "from", "", "Origin as lon,lat")
	routeCmd.Flags().StringVar(&toArg, "to", "", "Destination as lon,lat")
	routeCmd.Flags().StringVarP(&unitsArg, "units", "u", "nm", "Length unit (nm, kilometers, miles, degrees, radians)")
	routeCmd.Flags().Float64VarP(&radiusKm, "radius", "r", 0, "Snap search radius in km (0 = default)")
	routeCmd.MarkFlagRequired("from")
	routeCmd.MarkFlagRequired("to")

	snapCmd.Flags().StringVar(&pointArg, "point", "", "Point as lon,lat")
	snapCmd.Flags().Float64VarP(&radiusKm, "radius", "r", 0, "Snap search radius in km (0 = default)")
	snapCmd.MarkFlagRequired("point")

	benchCmd.Flags().IntVarP(&numQueries, "queries", "q", 1000, "Number of routing requests to run")
	benchCmd.Flags().IntVarP(&numWorkers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")

	serveCmd.Flags().StringVar(&configPath, "config", "", "Config file path")

	rootCmd.AddCommand(routeCmd, snapCmd, benchCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadNetwork reads the network from the cache when set, else from GeoJSON.
func loadNetwork() *network.Network {
	start := time.Now()

	var (
		net *network.Network
		err error
	)
	if cacheFile != "" {
		net, err = network.LoadFromFile(cacheFile)
	} else {
		net, err = network.LoadGeoJSON(networkFile)
	}
	if err != nil {
		log.Fatalf("Failed to load network: %v", err)
	}

	if verbose {
		fmt.Printf("Loaded %d features in %v\n", net.Len(), time.Since(start))
	}
	return net
}

func newRouter(net *network.Network) *router.Router {
	return router.NewWithRadius(net, pathfind.NewDijkstra(net), radiusKm)
}

func parsePointArg(raw string) orb.Point {
	parts := strings.Split(raw, ",")
	coords := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			log.Fatalf("Malformed point %q: %v", raw, err)
		}
		coords = append(coords, v)
	}

	p, err := router.Position(coords)
	if err != nil {
		log.Fatalf("Malformed point %q: %v", raw, err)
	}
	return p
}

func runRoute(cmd *cobra.Command, args []string) {
	unit, err := units.Parse(unitsArg)
	if err != nil {
		log.Fatalf("Invalid units: %v", err)
	}
	origin := parsePointArg(fromArg)
	destination := parsePointArg(toArg)

	net := loadNetwork()
	rt := newRouter(net)

	start := time.Now()
	route, err := rt.Route(origin, destination, unit)
	if err != nil {
		log.Fatalf("Routing failed: %v", err)
	}
	if route == nil {
		fmt.Println("No route found between the snapped endpoints")
		os.Exit(2)
	}

	if verbose {
		fmt.Printf("Computed %.1f %s route (%d vertices) in %v\n",
			route.Length, route.Units, len(route.Line), time.Since(start))
	}

	data, err := route.Feature().MarshalJSON()
	if err != nil {
		log.Fatalf("Failed to encode route: %v", err)
	}
	fmt.Println(string(data))
}

func runSnap(cmd *cobra.Command, args []string) {
	p := parsePointArg(pointArg)

	net := loadNetwork()
	snapper := network.NewSnapper(net, radiusKm)

	snapped, err := snapper.Snap(p)
	if err != nil {
		log.Fatalf("Snap failed: %v", err)
	}
	fmt.Printf("%g,%g\n", snapped.Lon(), snapped.Lat())
}

func runBench(cmd *cobra.Command, args []string) {
	net := loadNetwork()
	rt := newRouter(net)

	fmt.Printf("Running %d routing requests using %d workers...\n", numQueries, numWorkers)

	// Random request pairs inside the network's bounding box.
	bound := net.Bound()
	pairs := make([][2]orb.Point, numQueries)
	for i := range pairs {
		pairs[i] = [2]orb.Point{randomPoint(bound), randomPoint(bound)}
	}

	var routed atomic.Int64
	var notFound atomic.Int64
	var failed atomic.Int64

	start := time.Now()

	var wg sync.WaitGroup
	perWorker := numQueries / numWorkers
	if perWorker < 1 {
		perWorker = 1
	}

	for w := 0; w < numWorkers && w*perWorker < numQueries; w++ {
		startIdx := w * perWorker
		endIdx := startIdx + perWorker
		if w == numWorkers-1 || endIdx > numQueries {
			endIdx = numQueries
		}

		wg.Add(1)
		go func(workerID, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				pair := pairs[i]
				route, err := rt.Route(pair[0], pair[1], units.Default)
				switch {
				case err != nil:
					failed.Add(1)
				case route == nil:
					notFound.Add(1)
				default:
					routed.Add(1)
				}

				if verbose && i%100 == 0 {
					fmt.Printf("Worker %d: request %d done\n", workerID, i)
				}
			}
		}(w, startIdx, endIdx)
	}

	wg.Wait()
	elapsed := time.Since(start)

	total := routed.Load() + notFound.Load() + failed.Load()
	fmt.Printf("\nBenchmark Results:\n")
	fmt.Printf("Total requests: %d\n", total)
	fmt.Printf("Total time: %v\n", elapsed)
	fmt.Printf("Requests per second: %.0f\n", float64(total)/elapsed.Seconds())
	fmt.Printf("Routed: %d, no route: %d, failed: %d\n", routed.Load(), notFound.Load(), failed.Load())
}

func randomPoint(b orb.Bound) orb.Point {
	return orb.Point{
		b.Min.Lon() + rand.Float64()*(b.Max.Lon()-b.Min.Lon()),
		b.Min.Lat() + rand.Float64()*(b.Max.Lat()-b.Min.Lat()),
	}
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	setupLogging(cfg.Log.Level, cfg.Log.Format)

	var net *network.Network
	switch cfg.Network.Source {
	case "cache":
		net, err = network.LoadFromFile(cfg.Network.Path)
	case "postgres":
		var src *network.PostGISSource
		src, err = network.NewPostGISSource(
			cfg.Database.Host, cfg.Database.User, cfg.Database.Password,
			cfg.Database.DBName, cfg.Database.Port, cfg.Database.Table,
		)
		if err == nil {
			defer src.Close()
			net, err = src.Load()
		}
	default:
		net, err = network.LoadGeoJSON(cfg.Network.Path)
	}
	if err != nil {
		log.Fatalf("Failed to load network: %v", err)
	}

	rt := router.NewWithRadius(net, pathfind.NewDijkstra(net), cfg.Network.SnapRadiusKm)

	r := mux.NewRouter()
	server.New(rt).RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	slog.Info("serving routing API", "addr", addr, "features", net.Len())
	log.Fatal(srv.ListenAndServe())
}

// setupLogging initialises the global slog default logger.
func setupLogging(level, format string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.ToLower(format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
