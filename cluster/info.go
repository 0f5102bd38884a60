package cluster

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/citrinedb/citrine-go/transport"
	"github.com/citrinedb/citrine-go/wire"
)

// requestInfo performs one info exchange over an already-deadlined
// connection: a TypeInfo frame carrying newline-separated query names,
// answered by "name\tvalue" lines. Only the small subset of the info
// grammar used by tending is understood here.
func requestInfo(conn *transport.Conn, names ...string) (map[string]string, error) {
	payload := strings.Join(names, "\n") + "\n"

	req := make([]byte, wire.ProtoHeaderSize+len(payload))
	wire.EncodeProto(req, wire.TypeInfo, uint64(len(payload)))
	copy(req[wire.ProtoHeaderSize:], payload)

	if _, err := conn.WriteFull(req); err != nil {
		return nil, fmt.Errorf("info request: %w", err)
	}

	hdr := make([]byte, wire.ProtoHeaderSize)
	if _, err := conn.ReadFull(hdr); err != nil {
		return nil, fmt.Errorf("info response header: %w", err)
	}

	proto, err := wire.DecodeProto(hdr)
	if err != nil {
		return nil, err
	}

	if proto.Type != wire.TypeInfo {
		return nil, fmt.Errorf("%w: expected info frame, got type %d", wire.ErrProtocol, proto.Type)
	}

	body := make([]byte, proto.Size)
	if _, err := conn.ReadFull(body); err != nil {
		return nil, fmt.Errorf("info response body: %w", err)
	}

	return parseInfoLines(string(body)), nil
}

func parseInfoLines(body string) map[string]string {
	values := make(map[string]string)

	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			continue
		}

		name, value, _ := strings.Cut(line, "\t")
		values[name] = value
	}

	return values
}

// parsePeers parses the "peers" info value: comma-separated
// name@host:port entries.
func parsePeers(value string) map[string]string {
	peers := make(map[string]string)

	if value == "" {
		return peers
	}

	for _, entry := range strings.Split(value, ",") {
		name, addr, ok := strings.Cut(entry, "@")
		if !ok || name == "" || addr == "" {
			continue
		}

		peers[name] = addr
	}

	return peers
}

// parseReplicas parses the "replicas-all" info value. Entries for each
// namespace are separated by ';' and look like
//
//	ns:<replicaCount>,<base64 bitmap>,<base64 bitmap>,...
//
// where bit p of the i-th bitmap means the reporting node is the i-th
// owner of partition p.
func parseReplicas(value string) (map[string][][]byte, error) {
	owners := make(map[string][][]byte)

	if value == "" {
		return owners, nil
	}

	for _, entry := range strings.Split(value, ";") {
		ns, spec, ok := strings.Cut(entry, ":")
		if !ok || ns == "" {
			return nil, fmt.Errorf("malformed replicas entry: %q", entry)
		}

		parts := strings.Split(spec, ",")

		count, err := strconv.Atoi(parts[0])
		if err != nil || count != len(parts)-1 {
			return nil, fmt.Errorf("malformed replica count in %q", entry)
		}

		bitmaps := make([][]byte, 0, count)

		for _, b64 := range parts[1:] {
			bitmap, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				return nil, fmt.Errorf("malformed replica bitmap in %q: %w", entry, err)
			}

			bitmaps = append(bitmaps, bitmap)
		}

		owners[ns] = bitmaps
	}

	return owners, nil
}
