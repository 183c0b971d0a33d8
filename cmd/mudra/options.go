package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
)

// options are the command line settings. Every flag defaults to the
// MUDRA_* environment variable of the same name when it is set.
type options struct {
	camera     int
	width      int
	height     int
	fps        int
	maxHands   int
	confidence float64
	tracking   float64
	complexity int
	fallback   bool
	mode       string
	smoothing  float64

	listen      string
	staticDir   string
	mqttBroker  string
	mqttTopic   string
	tray        bool
	headless    bool
	screenshots string
	dataDir     string
}

func parseOptions(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("mudra", flag.ContinueOnError)
	det := detector.DefaultConfig()
	cam := capture.DefaultConfig()

	fs.IntVar(&o.camera, "camera", getEnvInt("MUDRA_CAMERA", cam.DeviceID), "camera device index")
	fs.IntVar(&o.width, "width", getEnvInt("MUDRA_WIDTH", cam.Width), "capture width")
	fs.IntVar(&o.height, "height", getEnvInt("MUDRA_HEIGHT", cam.Height), "capture height")
	fs.IntVar(&o.fps, "fps", getEnvInt("MUDRA_FPS", cam.FPS), "frame rate limit")
	fs.IntVar(&o.maxHands, "max-hands", getEnvInt("MUDRA_MAX_HANDS", det.MaxHands), "maximum number of hands to detect")
	fs.Float64Var(&o.confidence, "confidence", getEnvFloat("MUDRA_CONFIDENCE", det.MinConfidence), "minimum detection confidence")
	fs.Float64Var(&o.tracking, "tracking-confidence", getEnvFloat("MUDRA_TRACKING_CONFIDENCE", det.MinTrackingConf), "minimum tracking confidence")
	fs.IntVar(&o.complexity, "model-complexity", getEnvInt("MUDRA_MODEL_COMPLEXITY", det.ModelComplexity), "pose model complexity (0 or 1)")
	fs.BoolVar(&o.fallback, "fallback", getEnvBool("MUDRA_FALLBACK", false), "use the skin colour detector instead of the pose model")
	fs.Float64Var(&o.smoothing, "smoothing", getEnvFloat("MUDRA_SMOOTHING", 0.7), "cursor smoothing, the weight kept from the previous position")
	fs.StringVar(&o.mode, "mode", getEnv("MUDRA_MODE", ""), "initial control mode (defaults to the last one used)")

	fs.StringVar(&o.listen, "listen", getEnv("MUDRA_LISTEN", ":8080"), "HTTP listen address, empty to disable")
	fs.StringVar(&o.staticDir, "static", getEnv("MUDRA_STATIC", ""), "dashboard directory to serve")
	fs.StringVar(&o.mqttBroker, "mqtt", getEnv("MUDRA_MQTT", ""), "MQTT broker URL, empty to disable")
	fs.StringVar(&o.mqttTopic, "mqtt-topic", getEnv("MUDRA_MQTT_TOPIC", "mudra"), "MQTT topic prefix")
	fs.BoolVar(&o.tray, "tray", getEnvBool("MUDRA_TRAY", false), "show the system tray menu")
	fs.BoolVar(&o.headless, "headless", getEnvBool("MUDRA_HEADLESS", false), "do not open the preview window")
	fs.StringVar(&o.screenshots, "screenshots", getEnv("MUDRA_SCREENSHOTS", "."), "screenshot directory")
	fs.StringVar(&o.dataDir, "data", getEnv("MUDRA_DATA", ""), "data directory (default ~/.mudra)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}
