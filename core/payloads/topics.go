package payloads

// Topic prefixes.
const (
	Prefix    = "avr"
	AllAVR    = Prefix + "/#"
	AllTopics = "#"
)

// Flight control module.
const (
	TopicFCMPositionLocal  = "avr/fcm/position/local"
	TopicFCMPositionGlobal = "avr/fcm/position/global"
	TopicFCMAttitudeEuler  = "avr/fcm/attitude/euler"
	TopicFCMVelocity       = "avr/fcm/velocity"
	TopicFCMBattery        = "avr/fcm/battery"
	TopicFCMStatus         = "avr/fcm/status"
	TopicFCMGPSInfo        = "avr/fcm/gps_info"
)

// Peripheral control module.
const (
	TopicPCMColorSet      = "avr/pcm/color/set"
	TopicPCMColorTimed    = "avr/pcm/color/timed"
	TopicPCMLaserFire     = "avr/pcm/laser/fire"
	TopicPCMLaserOn       = "avr/pcm/laser/on"
	TopicPCMLaserOff      = "avr/pcm/laser/off"
	TopicPCMReset         = "avr/pcm/reset"
	TopicPCMServoOpen     = "avr/pcm/servo/open"
	TopicPCMServoClose    = "avr/pcm/servo/close"
	TopicPCMServoMin      = "avr/pcm/servo/pwm/min"
	TopicPCMServoMax      = "avr/pcm/servo/pwm/max"
	TopicPCMServoPercent  = "avr/pcm/servo/percent"
	TopicPCMServoAbsolute = "avr/pcm/servo/absolute"
	TopicPCMServoCheck    = "avr/pcm/servo/check"
	TopicPCMServoStatus   = "avr/pcm/servo/status"
)

// Visual inertial odometry, vision and sensors.
const (
	TopicVIOPositionNED    = "avr/vio/position/ned"
	TopicVIOVelocityNED    = "avr/vio/velocity/ned"
	TopicVIOOrientationEul = "avr/vio/orientation/eul"
	TopicVIOConfidence     = "avr/vio/confidence"
	TopicVIOResync         = "avr/vio/resync"
	TopicAprilTagsVisible  = "avr/apriltags/visible"
	TopicThermalReading    = "avr/thermal/reading"
	TopicAutonomousEnable  = "avr/autonomous/enable"
)
