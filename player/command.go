/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package player

import (
	"encoding/json"
	"strconv"
)

// Player API function names.
const (
	FuncMute           = "mute"
	FuncUnMute         = "unMute"
	FuncPlay           = "playVideo"
	FuncPause          = "pauseVideo"
	FuncSeekTo         = "seekTo"
	FuncGetCurrentTime = "getCurrentTime"
)

// TrustedOrigin is the origin embedded players post from.
const TrustedOrigin = "https://www.youtube.com"

// Command is the envelope the embedded player accepts over postMessage.
type Command struct {
	Event string `json:"event"`
	Func  string `json:"func"`
	Args  any    `json:"args"`
}

func call(fn string) Command {
	return Command{Event: "command", Func: fn, Args: ""}
}

func Mute() Command           { return call(FuncMute) }
func UnMute() Command         { return call(FuncUnMute) }
func PlayVideo() Command      { return call(FuncPlay) }
func PauseVideo() Command     { return call(FuncPause) }
func GetCurrentTime() Command { return call(FuncGetCurrentTime) }

// SeekTo jumps to an absolute position, allowing the player to fetch
// unbuffered data.
func SeekTo(seconds float64) Command {
	return Command{Event: "command", Func: FuncSeekTo, Args: []any{seconds, true}}
}

// Encode returns the JSON text posted to the player.
func (c Command) Encode() string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(b)
}

// Label is the accessible title of a tile's player surface. It stays the
// same across reloads.
func Label(tile int) string {
	return "Player " + strconv.Itoa(tile) + " Stream"
}

type message struct {
	Event string          `json:"event"`
	Info  json.RawMessage `json:"info"`
}

type playbackInfo struct {
	CurrentTime *float64 `json:"currentTime"`
}

// ParseCurrentTime extracts the playback position from a player message.
// ok is false for well formed messages of any other shape; err is set only
// when data is not a JSON object.
func ParseCurrentTime(data []byte) (current float64, ok bool, err error) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return 0, false, err
	}
	if msg.Event != "infoDelivery" {
		return 0, false, nil
	}

	var info playbackInfo
	if json.Unmarshal(msg.Info, &info) != nil || info.CurrentTime == nil {
		return 0, false, nil
	}

	return *info.CurrentTime, true, nil
}
