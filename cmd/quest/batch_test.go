package main

import (
	"reflect"
	"testing"
)

func TestArtifactNames(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "distinct basenames keep plain names",
			paths: []string{"a/util.py", "b/helpers.py"},
			want:  []string{"util", "helpers"},
		},
		{
			name:  "colliding basenames get positional suffixes",
			paths: []string{"a/util.py", "b/util.py", "c/other.py"},
			want:  []string{"util_1", "util_2", "other"},
		},
		{
			name:  "same path listed twice still yields unique names",
			paths: []string{"util.py", "util.py"},
			want:  []string{"util_1", "util_2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifactNames(tt.paths)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("artifactNames(%v) = %v, want %v", tt.paths, got, tt.want)
			}
		})
	}
}
