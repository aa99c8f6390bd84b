package sim

import "math"

// The thermal model is pure: every function here is a function of its inputs
// only. Heat from an active source falls off exponentially with distance and
// every reading decays toward zero at the rate of the room's decay constant.

// HeatSource is an active heater's position and target temperature. Heaters
// that are switched off must not be passed in; their contribution is zero.
type HeatSource struct {
	X    float64
	Y    float64
	Temp float64
}

// SensorSample is a sensor's position and current reading.
type SensorSample struct {
	X       float64
	Y       float64
	Reading float64
}

// MaxSourceTemp returns the hottest target temperature among active sources,
// which caps every computed reading. Zero when no source is active.
func MaxSourceTemp(sources []HeatSource) float64 {
	max := 0.0
	for _, s := range sources {
		if s.Temp > max {
			max = s.Temp
		}
	}
	return max
}

// SensorReading advances one sensor's reading by dt seconds. The old reading
// decays by k*dt (floored at zero), then each active source contributes
// min(T, T*exp(-k*d))*dt - k*dt. With at least one active source the result
// is clamped to [0, MaxSourceTemp]; with none, the decayed value stands so a
// cooling room keeps strictly decreasing instead of snapping to zero.
func SensorReading(old, x, y float64, sources []HeatSource, k, dt float64) float64 {
	reading := math.Max(old-k*dt, 0)
	if len(sources) == 0 {
		return reading
	}
	for _, s := range sources {
		d := math.Hypot(x-s.X, y-s.Y)
		reading += math.Min(s.Temp, s.Temp*math.Exp(-k*d))*dt - k*dt
	}
	return clamp(reading, 0, MaxSourceTemp(sources))
}

// AmbientStep advances the room-wide ambient temperature by dt seconds.
// Ambient decays toward zero by k*dt; each active source adds energy spread
// over the room area. Clamped to the hottest active source.
func AmbientStep(old float64, sources []HeatSource, k, dt, width, height float64) float64 {
	ambient := math.Max(old-k*dt, 0)
	if len(sources) == 0 || width <= 0 || height <= 0 {
		return ambient
	}
	for _, s := range sources {
		ambient += s.Temp * k * dt / (width * height)
	}
	return clamp(ambient, 0, MaxSourceTemp(sources))
}

// TemperatureAt estimates the temperature at a point. Out-of-bounds points
// and rooms without sensors read zero. A query at a sensor's exact position
// short-circuits to that sensor's reading. Otherwise the value is the larger
// of the clamped source contribution and the inverse-distance-weighted sensor
// average, falling back to ambient when both are zero.
func TemperatureAt(x, y float64, sources []HeatSource, sensors []SensorSample, ambient, k, width, height float64) float64 {
	if len(sensors) == 0 || x < 0 || x > width || y < 0 || y > height {
		return 0
	}

	var weightSum, weighted float64
	for _, sn := range sensors {
		d := math.Hypot(x-sn.X, y-sn.Y)
		if d == 0 {
			return sn.Reading
		}
		w := 1 / d
		weightSum += w
		weighted += w * sn.Reading
	}
	sensorPart := weighted / weightSum

	sourcePart := 0.0
	for _, s := range sources {
		d := math.Hypot(x-s.X, y-s.Y)
		sourcePart += math.Min(s.Temp, s.Temp*math.Exp(-k*d))
	}
	if len(sources) > 0 {
		sourcePart = clamp(sourcePart, 0, MaxSourceTemp(sources))
	}

	v := math.Max(sourcePart, sensorPart)
	if v == 0 {
		return ambient
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
