package pcc

import "fmt"

// Command identifies a PCC operation. The values are fixed by the board
// firmware.
type Command byte

const (
	CmdSetServoOpenClose    Command = 0
	CmdSetServoMin          Command = 1
	CmdSetServoMax          Command = 2
	CmdSetServoPct          Command = 3
	CmdSetServoAbs          Command = 4
	CmdSetBaseColor         Command = 5
	CmdSetTempColor         Command = 6
	CmdFireLaser            Command = 7
	CmdSetLaserOn           Command = 8
	CmdSetLaserOff          Command = 9
	CmdResetAVRPeriph       Command = 10
	CmdCheckServoController Command = 11
)

var commandNames = map[Command]string{
	CmdSetServoOpenClose:    "set_servo_open_close",
	CmdSetServoMin:          "set_servo_min",
	CmdSetServoMax:          "set_servo_max",
	CmdSetServoPct:          "set_servo_pct",
	CmdSetServoAbs:          "set_servo_abs",
	CmdSetBaseColor:         "set_base_color",
	CmdSetTempColor:         "set_temp_color",
	CmdFireLaser:            "fire_laser",
	CmdSetLaserOn:           "set_laser_on",
	CmdSetLaserOff:          "set_laser_off",
	CmdResetAVRPeriph:       "reset_avr_peripheral",
	CmdCheckServoController: "check_servo_controller",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", byte(c))
}

// ServoAction opens or closes a servo.
type ServoAction string

const (
	ServoOpen  ServoAction = "open"
	ServoClose ServoAction = "close"
)

// pulse values understood by the firmware
const (
	servoOpenValue  = 150
	servoCloseValue = 100
)
