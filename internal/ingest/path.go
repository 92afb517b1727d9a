package ingest

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	DefaultRawPrefix    = "raw_resume"
	DefaultParsedPrefix = "parsed_resume"
	mirrorFilePrefix    = "parsed-"
)

// PathResolver maps raw object keys to their team/job/resume identifiers and
// to the key of their parsed mirror.
type PathResolver struct {
	RawPrefix    string
	ParsedPrefix string
}

func NewPathResolver(rawPrefix, parsedPrefix string) PathResolver {
	if rawPrefix == "" {
		rawPrefix = DefaultRawPrefix
	}
	if parsedPrefix == "" {
		parsedPrefix = DefaultParsedPrefix
	}
	return PathResolver{
		RawPrefix:    strings.Trim(rawPrefix, "/"),
		ParsedPrefix: strings.Trim(parsedPrefix, "/"),
	}
}

// DecodeKey undoes the form encoding S3 applies to keys in event
// notifications. Keys that do not decode are returned as given.
func DecodeKey(key string) string {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return key
	}
	return decoded
}

// Resolve decodes key and splits it into team, job and file name. Segments
// after the file name are ignored.
func (r PathResolver) Resolve(key string) (PathInfo, error) {
	decoded := DecodeKey(key)
	rest := strings.TrimPrefix(decoded, r.RawPrefix+"/")

	parts := strings.Split(rest, "/")
	if len(parts) < 3 {
		return PathInfo{}, fmt.Errorf("%w: %q has %d segments", ErrPathFormat, decoded, len(parts))
	}
	team, job, file := parts[0], parts[1], parts[2]
	resumeID := strings.TrimSuffix(file, path.Ext(file))
	if team == "" || job == "" || resumeID == "" {
		return PathInfo{}, fmt.Errorf("%w: %q has an empty segment", ErrPathFormat, decoded)
	}

	return PathInfo{
		ObjectKey: decoded,
		TeamID:    team,
		JobID:     job,
		FileName:  file,
		ResumeID:  resumeID,
	}, nil
}

// MirrorKey returns where the parsed JSON for the decoded key is written.
// Keys under the raw prefix become parsedPrefix/team/job/file with the
// extension set to .json; any other key gets a "parsed-" file name in place.
func (r PathResolver) MirrorKey(key string) string {
	var out string
	if rest, ok := strings.CutPrefix(key, r.RawPrefix+"/"); ok {
		// team/job/file; anything after the file name is dropped as in Resolve
		parts := strings.SplitN(rest, "/", 4)
		out = r.ParsedPrefix + "/" + strings.Join(parts[:min(len(parts), 3)], "/")
	} else {
		dir, file := path.Split(key)
		out = dir + mirrorFilePrefix + file
	}
	return strings.TrimSuffix(out, path.Ext(out)) + ".json"
}
