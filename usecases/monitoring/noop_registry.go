//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2024 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package monitoring

import "github.com/prometheus/client_golang/prometheus"

// NoopRegisterer accepts every collector without exporting it. Metrics built
// on it still count, which keeps them observable from tests.
type NoopRegisterer struct{}

func (n NoopRegisterer) Register(prometheus.Collector) error {
	return nil
}

func (n NoopRegisterer) MustRegister(...prometheus.Collector) {}

func (n NoopRegisterer) Unregister(prometheus.Collector) bool {
	return true
}

// Registerer returns reg when monitoring is enabled and a NoopRegisterer
// otherwise.
func Registerer(enabled bool, reg prometheus.Registerer) prometheus.Registerer {
	if !enabled || reg == nil {
		return NoopRegisterer{}
	}
	return reg
}
