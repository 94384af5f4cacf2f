package payloads

import (
	"reflect"
	"sort"
)

var registry = map[string]reflect.Type{
	TopicFCMPositionLocal:  reflect.TypeOf(FCMPositionLocal{}),
	TopicFCMPositionGlobal: reflect.TypeOf(FCMPositionGlobal{}),
	TopicFCMAttitudeEuler:  reflect.TypeOf(FCMAttitudeEuler{}),
	TopicFCMVelocity:       reflect.TypeOf(FCMVelocity{}),
	TopicFCMBattery:        reflect.TypeOf(FCMBattery{}),
	TopicFCMStatus:         reflect.TypeOf(FCMStatus{}),
	TopicFCMGPSInfo:        reflect.TypeOf(FCMGPSInfo{}),

	TopicPCMColorSet:      reflect.TypeOf(PCMColorSet{}),
	TopicPCMColorTimed:    reflect.TypeOf(PCMColorTimed{}),
	TopicPCMLaserFire:     reflect.TypeOf(EmptyMessage{}),
	TopicPCMLaserOn:       reflect.TypeOf(EmptyMessage{}),
	TopicPCMLaserOff:      reflect.TypeOf(EmptyMessage{}),
	TopicPCMReset:         reflect.TypeOf(EmptyMessage{}),
	TopicPCMServoOpen:     reflect.TypeOf(PCMServo{}),
	TopicPCMServoClose:    reflect.TypeOf(PCMServo{}),
	TopicPCMServoMin:      reflect.TypeOf(PCMServoPWM{}),
	TopicPCMServoMax:      reflect.TypeOf(PCMServoPWM{}),
	TopicPCMServoPercent:  reflect.TypeOf(PCMServoPercent{}),
	TopicPCMServoAbsolute: reflect.TypeOf(PCMServoAbsolute{}),
	TopicPCMServoCheck:    reflect.TypeOf(EmptyMessage{}),
	TopicPCMServoStatus:   reflect.TypeOf(PCMServoStatus{}),

	TopicVIOPositionNED:    reflect.TypeOf(VIOPositionNED{}),
	TopicVIOVelocityNED:    reflect.TypeOf(VIOVelocityNED{}),
	TopicVIOOrientationEul: reflect.TypeOf(VIOOrientationEul{}),
	TopicVIOConfidence:     reflect.TypeOf(VIOConfidence{}),
	TopicVIOResync:         reflect.TypeOf(EmptyMessage{}),
	TopicAprilTagsVisible:  reflect.TypeOf(AprilTagVisible{}),
	TopicThermalReading:    reflect.TypeOf(ThermalReading{}),
	TopicAutonomousEnable:  reflect.TypeOf(AutonomousEnable{}),
}

// TypeFor returns the payload type registered for topic.
func TypeFor(topic string) (reflect.Type, bool) {
	t, ok := registry[topic]
	return t, ok
}

// New returns a pointer to a zero payload for topic, suitable for decoding.
func New(topic string) (any, bool) {
	t, ok := registry[topic]
	if !ok {
		return nil, false
	}
	return reflect.New(t).Interface(), true
}

// IsEmpty reports whether topic carries an EmptyMessage.
func IsEmpty(topic string) bool {
	t, ok := registry[topic]
	return ok && t == reflect.TypeOf(EmptyMessage{})
}

// Topics lists every registered topic in lexical order.
func Topics() []string {
	out := make([]string, 0, len(registry))
	for topic := range registry {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}
