package discovery

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/weaveworks/ofpath/common"
	"github.com/weaveworks/ofpath/router"
	"github.com/weaveworks/ofpath/topology"
)

var (
	errMalformedLink = errors.New("malformed link")
	errUnknownSource = errors.New("unknown discovery source")
)

// A Source produces the link specs to announce. Sources are named by
// a scheme, like "file:/etc/ofpath/links".
type Source func(arg string) ([]string, error)

var sources = map[string]Source{
	"file": readLinkFile,
}

// ParseLink parses one link spec, "<dpid>:<port>-<dpid>:<port>". Dpids
// are decimal, or hex with a 0x prefix; ports are decimal.
func ParseLink(spec string) (router.LinkAdd, error) {
	ends := strings.Split(strings.TrimSpace(spec), "-")
	if len(ends) != 2 {
		return router.LinkAdd{}, errors.Wrapf(errMalformedLink, "%q", spec)
	}
	src, err := parseLinkEnd(ends[0])
	if err != nil {
		return router.LinkAdd{}, errors.Wrapf(err, "%q", spec)
	}
	dst, err := parseLinkEnd(ends[1])
	if err != nil {
		return router.LinkAdd{}, errors.Wrapf(err, "%q", spec)
	}
	return router.LinkAdd{Src: src, Dst: dst}, nil
}

func parseLinkEnd(s string) (topology.LinkEnd, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return topology.LinkEnd{}, errMalformedLink
	}
	dpid, err := strconv.ParseUint(s[:i], 0, 64)
	if err != nil {
		return topology.LinkEnd{}, errors.Wrap(err, "dpid")
	}
	port, err := strconv.ParseUint(s[i+1:], 10, 32)
	if err != nil {
		return topology.LinkEnd{}, errors.Wrap(err, "port")
	}
	return topology.LinkEnd{Dpid: topology.DPID(dpid), Port: topology.PortNo(port)}, nil
}

// ParseLinks parses every spec, expanding "scheme:arg" entries through
// the source registered for the scheme. All malformed specs are
// reported together.
func ParseLinks(specs []string) ([]router.LinkAdd, error) {
	var (
		links []router.LinkAdd
		errs  []error
	)
	for _, spec := range specs {
		expanded, err := expand(spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, s := range expanded {
			link, err := ParseLink(s)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			links = append(links, link)
		}
	}
	if len(errs) > 0 {
		return links, errors.New(common.ErrorMessages(errs))
	}
	return links, nil
}

func expand(spec string) ([]string, error) {
	i := strings.Index(spec, ":")
	if i < 0 {
		return []string{spec}, nil
	}
	scheme := spec[:i]
	if _, err := strconv.ParseUint(scheme, 0, 64); err == nil {
		return []string{spec}, nil
	}
	source, found := sources[scheme]
	if !found {
		return nil, errors.Wrapf(errUnknownSource, "%q", scheme)
	}
	return source(spec[i+1:])
}

// Link files hold one link spec per line. Blank lines and lines
// starting with # are ignored.
func readLinkFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var specs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	return specs, errors.Wrapf(scanner.Err(), "reading %s", path)
}

// Feed submits every link in order. It stops early, returning the
// number submitted, if submit refuses one.
func Feed(links []router.LinkAdd, submit func(router.Event) bool) int {
	for i, link := range links {
		common.Log.Debugf("[discovery] announcing link %s", link.Link())
		if !submit(link) {
			return i
		}
	}
	return len(links)
}
