// Shadowscan - Shadow AI Discovery and Migration Governance
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shadowscan

package classifier

import (
	"fmt"
	"net"
	"strings"

	"github.com/tomtom215/shadowscan/internal/models"
)

// labelNode is one DNS label in the reversed-label trie.
type labelNode struct {
	children map[string]*labelNode
	wildcard *labelNode
	sig      *Signature // set when a pattern ends here
}

func newLabelNode() *labelNode {
	return &labelNode{children: make(map[string]*labelNode)}
}

// Registry is an immutable set of signatures. It is safe for concurrent use.
type Registry struct {
	root *labelNode
	sigs []Signature
}

// NewRegistry validates every signature and builds the matcher. Any malformed
// or duplicate entry fails the whole load with a *models.ConfigurationError.
func NewRegistry(sigs []Signature) (*Registry, error) {
	r := &Registry{
		root: newLabelNode(),
		sigs: make([]Signature, 0, len(sigs)),
	}
	for i, s := range sigs {
		if problem := s.check(); problem != "" {
			return nil, &models.ConfigurationError{
				Field:   fmt.Sprintf("classifier.signatures[%d]", i),
				Message: fmt.Sprintf("%s (pattern %q)", problem, s.Pattern),
			}
		}
		s.Pattern = normalizePattern(s.Pattern)
		if s.ToolName == "" {
			s.ToolName = s.ToolID
		}
		if !r.insert(s) {
			return nil, &models.ConfigurationError{
				Field:   fmt.Sprintf("classifier.signatures[%d]", i),
				Message: fmt.Sprintf("duplicate pattern %q", s.Pattern),
			}
		}
		r.sigs = append(r.sigs, s)
	}
	return r, nil
}

// insert walks the labels right to left. Returns false if the pattern is
// already present.
func (r *Registry) insert(s Signature) bool {
	labels := s.labels()
	node := r.root
	for i := len(labels) - 1; i >= 0; i-- {
		l := labels[i]
		if l == Wildcard {
			if node.wildcard == nil {
				node.wildcard = newLabelNode()
			}
			node = node.wildcard
			continue
		}
		next, ok := node.children[l]
		if !ok {
			next = newLabelNode()
			node.children[l] = next
		}
		node = next
	}
	if node.sig != nil {
		return false
	}
	sig := s
	node.sig = &sig
	return true
}

// Len returns the number of signatures loaded.
func (r *Registry) Len() int {
	return len(r.sigs)
}

// Signatures returns a copy of the loaded signatures in load order.
func (r *Registry) Signatures() []Signature {
	out := make([]Signature, len(r.sigs))
	copy(out, r.sigs)
	return out
}

type candidate struct {
	sig      *Signature
	depth    int
	literals int
}

func (c candidate) beats(o candidate) bool {
	if o.sig == nil {
		return true
	}
	if c.depth != o.depth {
		return c.depth > o.depth
	}
	if c.literals != o.literals {
		return c.literals > o.literals
	}
	return c.sig.Pattern < o.sig.Pattern
}

// Match returns the most specific signature for host. The host may carry a
// port or a trailing dot; matching ignores case.
func (r *Registry) Match(host string) (Signature, bool) {
	h, ok := NormalizeHost(host)
	if !ok {
		return Signature{}, false
	}
	labels := strings.Split(h, ".")

	var best candidate
	r.walk(r.root, labels, len(labels)-1, 0, 0, &best)
	if best.sig == nil {
		return Signature{}, false
	}
	return *best.sig, true
}

func (r *Registry) walk(node *labelNode, labels []string, i, depth, literals int, best *candidate) {
	if node.sig != nil {
		c := candidate{sig: node.sig, depth: depth, literals: literals}
		if c.beats(*best) {
			*best = c
		}
	}
	if i < 0 {
		return
	}
	if next, ok := node.children[labels[i]]; ok {
		r.walk(next, labels, i-1, depth+1, literals+1, best)
	}
	if node.wildcard != nil {
		r.walk(node.wildcard, labels, i-1, depth+1, literals, best)
	}
}

// NormalizeHost lowercases host, strips a port and a trailing dot, and
// reports whether the result is a usable DNS name.
func NormalizeHost(host string) (string, bool) {
	h := strings.TrimSpace(host)
	if h == "" {
		return "", false
	}
	if strings.Contains(h, ":") {
		if hp, _, err := net.SplitHostPort(h); err == nil {
			h = hp
		}
	}
	h = strings.TrimSuffix(strings.ToLower(h), ".")
	if h == "" || net.ParseIP(h) != nil {
		return "", false
	}
	for _, l := range strings.Split(h, ".") {
		if !validLabel(l) {
			return "", false
		}
	}
	return h, true
}
