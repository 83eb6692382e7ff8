package metrics

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithHistogramBuckets([]float64{0.1, 1}),
			WithPrometheusRegistry(registry),
		)

		Convey("When a counter is touched", func() {
			m.mutations.WithLabelValues("add_subject").Inc()
			families, err := registry.Gather()
			So(err, ShouldBeNil)

			Convey("Then metric names carry the namespace and subsystem", func() {
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_mutations_total"], ShouldBeTrue)
				So(names["test_unit_subjects_total"], ShouldBeTrue)
			})
		})

		Convey("Then empty options keep the defaults", func() {
			d := NewManager(WithNamespace(""), WithSubsystem(""), WithPrometheusRegistry(prometheus.NewRegistry()))
			So(d.namespace, ShouldEqual, "upg")
			So(d.subsystem, ShouldEqual, "calculator")
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When document gauges are updated", func() {
			UpdateSubjectsTotal(3)
			UpdateOverallAverage(1.5)

			Convey("Then the gauges hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.subjectsTotal), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.overallAverage), ShouldEqual, 1.5)
			})
		})

		Convey("When nothing is graded", func() {
			UpdateOverallAverage(1.5)
			ClearOverallAverage()

			Convey("Then the average is undefined rather than zero", func() {
				So(math.IsNaN(testutil.ToFloat64(globalManager.overallAverage)), ShouldBeTrue)
			})
		})

		Convey("When counters are incremented", func() {
			before := testutil.ToFloat64(globalManager.mutations.WithLabelValues("delete_entry"))
			RecordMutation("delete_entry")
			RecordMutation("delete_entry")

			Convey("Then they advance", func() {
				So(testutil.ToFloat64(globalManager.mutations.WithLabelValues("delete_entry")), ShouldEqual, before+2)
			})
		})

		Convey("When a backup is recorded", func() {
			RecordBackup(1700000000)

			Convey("Then the last backup time is kept", func() {
				So(testutil.ToFloat64(globalManager.backupLastUnix), ShouldEqual, 1700000000)
			})
		})

		Convey("Then the remaining recorders do not panic", func() {
			So(func() {
				RecordImport("json")
				RecordExport("yaml")
				RecordHTTPRequest("/api/state", "GET", "200")
				RecordHTTPRequestDuration("/api/state", "GET", "200", 0.002)
				UpdateQueueCapacity(64)
				UpdateQueueSize(1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordPersistWrite(0.4)
				RecordPersistWriteError()
				RecordPersistStale()
				RecordStoreOperation("memory", "set", 0.01)
				RecordBackupError()
				RecordErrorByComponent("app", "not_found")
			}, ShouldNotPanic)
		})

		Convey("Then the registry is the custom one", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
