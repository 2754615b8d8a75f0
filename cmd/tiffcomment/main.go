// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Command tiffcomment prints or replaces the ImageDescription of TIFF files in place.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bep/tiffsave"
	"golang.org/x/exp/mmap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

func main() {
	var (
		set     string
		file    string
		charset string
	)
	flag.StringVar(&set, "set", "", "replace the comment with this text")
	flag.StringVar(&file, "file", "", "replace the comment with the contents of this file")
	flag.StringVar(&charset, "charset", "", "comment charset: latin1 or windows-1252 (default: write UTF-8 as-is)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tiffcomment [-set text | -file path] [-charset name] file.tif...")
		os.Exit(2)
	}

	enc, err := lookupCharset(charset)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	edit := isSet(flag.CommandLine, "set", "file")
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read comment: %v\n", err)
			os.Exit(1)
		}
		set = string(b)
	}

	var failed bool
	for _, filename := range flag.Args() {
		if edit {
			err = overwrite(filename, set, enc)
		} else {
			err = printComment(filename, enc, flag.NArg() > 1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// isSet reports whether any of the named flags was given on the command line,
// so an empty -set still clears the comment.
func isSet(fs *flag.FlagSet, names ...string) bool {
	var found bool
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				found = true
			}
		}
	})
	return found
}

func lookupCharset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "":
		return nil, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", name)
	}
}

func printComment(filename string, enc encoding.Encoding, withName bool) error {
	r, err := mmap.Open(filename)
	if err != nil {
		return err
	}
	defer r.Close()

	comment, err := tiffsave.ReadComment(io.NewSectionReader(r, 0, int64(r.Len())))
	if err != nil {
		return err
	}
	if enc != nil {
		if comment, err = enc.NewDecoder().String(comment); err != nil {
			return err
		}
	}
	if withName {
		fmt.Printf("%s:\n", filename)
	}
	fmt.Println(comment)
	return nil
}

func overwrite(filename, comment string, enc encoding.Encoding) error {
	f, err := os.OpenFile(filename, os.O_RDWR, 0)
	if err != nil {
		return err
	}

	w, err := tiffsave.NewWriter(tiffsave.Options{
		W:            f,
		R:            f,
		TextEncoding: enc,
		Warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "%s: warning: %s\n", filename, fmt.Sprintf(format, args...))
		},
	})
	if err != nil {
		f.Close()
		return err
	}
	if err := w.OverwriteComment(comment); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
