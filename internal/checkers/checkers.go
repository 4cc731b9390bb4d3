// Package checkers decides whether a program's output matches the
// standard answer.
package checkers

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxTokenSize bounds a single line or token read by the comparators.
const maxTokenSize = 16 * 1024 * 1024

// Comparator compares the file at actual against the standard answer.
// input is the test input the program was given; most comparators
// ignore it.
type Comparator interface {
	Compare(input, standard, actual string) (bool, error)
}

// Exact accepts byte identical output.
type Exact struct{}

func (Exact) Compare(_, standard, actual string) (bool, error) {
	return compareFiles(standard, actual, sameBytes)
}

func sameBytes(a, b io.Reader) (bool, error) {
	ra, rb := bufio.NewReader(a), bufio.NewReader(b)
	for {
		ca, errA := ra.ReadByte()
		cb, errB := rb.ReadByte()
		if errA != nil && errA != io.EOF {
			return false, errA
		}
		if errB != nil && errB != io.EOF {
			return false, errB
		}
		if errA == io.EOF || errB == io.EOF {
			return errA == errB, nil
		}
		if ca != cb {
			return false, nil
		}
	}
}

// Tokens accepts output with the same whitespace separated tokens.
type Tokens struct{}

func (Tokens) Compare(_, standard, actual string) (bool, error) {
	return compareFiles(standard, actual, func(a, b io.Reader) (bool, error) {
		sa, sb := bufio.NewScanner(a), bufio.NewScanner(b)
		sa.Buffer(make([]byte, 64*1024), maxTokenSize)
		sb.Buffer(make([]byte, 64*1024), maxTokenSize)
		sa.Split(bufio.ScanWords)
		sb.Split(bufio.ScanWords)
		for {
			okA, okB := sa.Scan(), sb.Scan()
			if !okA || !okB {
				if err := errors.Join(sa.Err(), sb.Err()); err != nil {
					return false, err
				}
				return okA == okB, nil
			}
			if !bytes.Equal(sa.Bytes(), sb.Bytes()) {
				return false, nil
			}
		}
	})
}

// Lines ignores trailing whitespace on each line and trailing blank lines.
type Lines struct{}

func (Lines) Compare(_, standard, actual string) (bool, error) {
	return compareFiles(standard, actual, func(a, b io.Reader) (bool, error) {
		la, err := normalizedLines(a)
		if err != nil {
			return false, err
		}
		lb, err := normalizedLines(b)
		if err != nil {
			return false, err
		}
		if len(la) != len(lb) {
			return false, nil
		}
		for i := range la {
			if la[i] != lb[i] {
				return false, nil
			}
		}
		return true, nil
	})
}

func normalizedLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxTokenSize)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), " \t\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// compareFiles opens both files. A missing actual output is a mismatch,
// a missing standard answer is an error.
func compareFiles(standard, actual string, cmp func(a, b io.Reader) (bool, error)) (bool, error) {
	fs, err := os.Open(standard)
	if err != nil {
		return false, fmt.Errorf("open standard answer: %w", err)
	}
	defer fs.Close()

	fa, err := os.Open(actual)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open output: %w", err)
	}
	defer fa.Close()

	return cmp(fs, fa)
}

// Parse resolves a comparator name: exact, tokens, lines or
// testlib:<checker path>.
func Parse(name string) (Comparator, error) {
	switch name {
	case "", "lines":
		return Lines{}, nil
	case "exact":
		return Exact{}, nil
	case "tokens":
		return Tokens{}, nil
	}
	if path, ok := strings.CutPrefix(name, "testlib:"); ok && path != "" {
		return &Testlib{Path: path}, nil
	}
	return nil, fmt.Errorf("unknown comparator %q", name)
}
