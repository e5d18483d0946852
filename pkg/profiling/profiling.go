package profiling

import (
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

// RegisterPprofRoutes adds Go pprof profiling endpoints to g. The caller
// decides the prefix and the guard in front of it.
func RegisterPprofRoutes(g *echo.Group) {
	g.GET("/", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	g.GET("/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	g.GET("/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	g.GET("/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	g.GET("/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))
	g.GET("/allocs", echo.WrapHandler(pprof.Handler("allocs")))
	g.GET("/block", echo.WrapHandler(pprof.Handler("block")))
	g.GET("/goroutine", echo.WrapHandler(pprof.Handler("goroutine")))
	g.GET("/heap", echo.WrapHandler(pprof.Handler("heap")))
	g.GET("/mutex", echo.WrapHandler(pprof.Handler("mutex")))
	g.GET("/threadcreate", echo.WrapHandler(pprof.Handler("threadcreate")))
}

// MemoryStats returns current memory usage of the application
type MemoryStats struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	NumGC        uint32  `json:"num_gc"`
	Goroutines   int     `json:"goroutines"`
	HeapObjects  uint64  `json:"heap_objects"`
	HeapInUseMB  float64 `json:"heap_in_use_mb"`
	Timestamp    string  `json:"timestamp"`
}

func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:      float64(m.Alloc) / 1024 / 1024,
		TotalAllocMB: float64(m.TotalAlloc) / 1024 / 1024,
		SysMB:        float64(m.Sys) / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		HeapObjects:  m.HeapObjects,
		HeapInUseMB:  float64(m.HeapInuse) / 1024 / 1024,
		Timestamp:    time.Now().Format(time.RFC3339),
	}
}

// MemoryHandler serves GetMemoryStats as JSON.
func MemoryHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, GetMemoryStats())
}
