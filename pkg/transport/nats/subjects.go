package nats

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bacalhau-project/gtbarrier/pkg/transport"
)

// Subjects of one group:
//
//	gtbarrier.<group>.p2p.<dst>.<src>.<tag>  point-to-point messages
//	gtbarrier.<group>.bcast.<root>           broadcasts
//	gtbarrier.<group>.join                   requests from ranks > 0 to rank 0
//	gtbarrier.<group>.ready                  rank 0 announcing a complete group
type subjects struct {
	prefix string
}

func newSubjects(group string) subjects {
	return subjects{prefix: subjectRoot + "." + group}
}

func (s subjects) p2p(dst, src int, tag transport.Tag) string {
	return fmt.Sprintf("%s.p2p.%d.%d.%d", s.prefix, dst, src, tag)
}

func (s subjects) inbox(dst int) string {
	return fmt.Sprintf("%s.p2p.%d.*.*", s.prefix, dst)
}

func (s subjects) broadcast(root int) string {
	return fmt.Sprintf("%s.bcast.%d", s.prefix, root)
}

func (s subjects) broadcasts() string {
	return s.prefix + ".bcast.*"
}

func (s subjects) join() string {
	return s.prefix + ".join"
}

func (s subjects) ready() string {
	return s.prefix + ".ready"
}

// parseP2P extracts source and tag from a point-to-point subject.
func parseP2P(subject string) (src int, tag transport.Tag, err error) {
	parts := strings.Split(subject, ".")
	if len(parts) < 3 {
		return 0, 0, fmt.Errorf("malformed subject %q", subject)
	}
	src, err = strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed source in subject %q: %w", subject, err)
	}
	t, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed tag in subject %q: %w", subject, err)
	}
	return src, transport.Tag(t), nil
}

func parseBroadcast(subject string) (int, error) {
	idx := strings.LastIndexByte(subject, '.')
	root, err := strconv.Atoi(subject[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed root in subject %q: %w", subject, err)
	}
	return root, nil
}
