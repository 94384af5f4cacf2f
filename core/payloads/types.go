package payloads

// EmptyMessage is the body of command topics that carry no data.
type EmptyMessage struct{}

// FCMPositionLocal is the local NED position in meters.
type FCMPositionLocal struct {
	N float64 `json:"n"`
	E float64 `json:"e"`
	D float64 `json:"d"`
}

// FCMPositionGlobal is the GPS position. Hdg is in degrees.
type FCMPositionGlobal struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
	Hdg float64 `json:"hdg"`
}

// FCMAttitudeEuler holds the vehicle attitude in degrees.
type FCMAttitudeEuler struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

type FCMVelocity struct {
	VN float64 `json:"vN"`
	VE float64 `json:"vE"`
	VD float64 `json:"vD"`
}

// FCMBattery reports pack voltage and state of charge (0-100).
type FCMBattery struct {
	Voltage float64 `json:"voltage"`
	SOC     float64 `json:"soc"`
}

type FCMStatus struct {
	Armed bool   `json:"armed"`
	Mode  string `json:"mode"`
}

type FCMGPSInfo struct {
	NumSatellites int    `json:"num_satellites"`
	FixType       string `json:"fix_type"`
}

// PCMColorSet sets the base color of the LED strip as white, red, green, blue.
type PCMColorSet struct {
	WRGB [4]uint8 `json:"wrgb"`
}

// PCMColorTimed shows a color for Duration seconds before reverting to the
// base color.
type PCMColorTimed struct {
	WRGB     [4]uint8 `json:"wrgb"`
	Duration float64  `json:"duration,omitempty"`
}

type PCMServo struct {
	Servo int `json:"servo"`
}

// PCMServoPWM sets the minimum or maximum pulse of a servo.
type PCMServoPWM struct {
	Servo int `json:"servo"`
	Pulse int `json:"pulse"`
}

type PCMServoPercent struct {
	Servo   int `json:"servo"`
	Percent int `json:"percent"`
}

type PCMServoAbsolute struct {
	Servo    int `json:"servo"`
	Position int `json:"position"`
}

type PCMServoStatus struct {
	Connected bool `json:"connected"`
}

type VIOPositionNED struct {
	N float64 `json:"n"`
	E float64 `json:"e"`
	D float64 `json:"d"`
}

type VIOVelocityNED struct {
	N float64 `json:"n"`
	E float64 `json:"e"`
	D float64 `json:"d"`
}

// VIOOrientationEul is the camera orientation in radians.
type VIOOrientationEul struct {
	Psi   float64 `json:"psi"`
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
}

// VIOConfidence is the tracking confidence, 0-100.
type VIOConfidence struct {
	Tracker float64 `json:"tracker"`
}

type AprilTagPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type AprilTag struct {
	ID             int              `json:"id"`
	HorizontalDist float64          `json:"horizontal_dist"`
	VerticalDist   float64          `json:"vertical_dist"`
	AngleToTag     float64          `json:"angle_to_tag"`
	Heading        float64          `json:"heading"`
	Pos            AprilTagPosition `json:"pos"`
}

type AprilTagVisible struct {
	Tags []AprilTag `json:"tags"`
}

// ThermalReading carries a base64 encoded image. Compressed reports whether
// the bytes were zlib compressed before encoding.
type ThermalReading struct {
	Data       string `json:"data"`
	Shape      []int  `json:"shape"`
	Compressed bool   `json:"compressed"`
}

type AutonomousEnable struct {
	Enabled bool `json:"enabled"`
}
