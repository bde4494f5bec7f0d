// Copyright 2024 The sweepcore Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package config loads a sweep preset (range list, FFT sizing request,
and sink selection) from a YAML file, for use by cmd/wbsweep and any
other driver that wants its sweep configuration external to the
binary.
*/
package config
