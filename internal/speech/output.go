package speech

import (
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Speaker prints replies and optionally speaks them through an external
// text-to-speech command (e.g. espeak). Say is fire-and-forget: TTS
// failures are logged, never surfaced.
type Speaker struct {
	name   string
	ttsCmd string
	out    io.Writer
	run    func(name string, args ...string) error
	mu     sync.Mutex
	log    zerolog.Logger
}

// NewSpeaker writes replies to w under the assistant's name. ttsCmd may be
// empty to disable speech.
func NewSpeaker(name, ttsCmd string, w io.Writer, log zerolog.Logger) *Speaker {
	return &Speaker{
		name:   name,
		ttsCmd: ttsCmd,
		out:    w,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
		log: log,
	}
}

// Say emits text. One utterance plays at a time.
func (s *Speaker) Say(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.out, "%s: %s\n", s.name, text)

	if s.ttsCmd == "" {
		return
	}
	if err := s.run(s.ttsCmd, Sanitize(text)); err != nil {
		s.log.Warn().Err(err).Msg("tts failed")
	}
}

var (
	reURL      = regexp.MustCompile(`https?://\S+`)
	reEmphasis = regexp.MustCompile(`\*{1,3}(.*?)\*{1,3}`)
	reHeader   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reBullet   = regexp.MustCompile(`(?m)^[•\-*]\s+`)
)

// Sanitize strips URLs and markdown markers so spoken output sounds
// natural.
func Sanitize(text string) string {
	text = reURL.ReplaceAllString(text, "")
	text = reEmphasis.ReplaceAllString(text, "$1")
	text = reHeader.ReplaceAllString(text, "")
	text = reBullet.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
