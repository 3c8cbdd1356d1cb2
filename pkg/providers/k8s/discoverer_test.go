package k8s

import (
	"context"
	"io"
	"log/slog"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedCluster() *fake.Clientset {
	return fake.NewSimpleClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "prod"}},
		&corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
			Status: corev1.NodeStatus{
				NodeInfo: corev1.NodeSystemInfo{KubeletVersion: "v1.31.0"},
			},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{
				Name:      "api-7d9f",
				Namespace: "prod",
				Labels:    map[string]string{"app": "api"},
			},
			Spec:   corev1.PodSpec{NodeName: "node-1"},
			Status: corev1.PodStatus{Phase: corev1.PodRunning},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{
				Name:      "migrate-job",
				Namespace: "prod",
			},
			Status: corev1.PodStatus{Phase: corev1.PodSucceeded},
		},
		&corev1.Service{
			ObjectMeta: metav1.ObjectMeta{Name: "api", Namespace: "prod"},
			Spec: corev1.ServiceSpec{
				Type:     corev1.ServiceTypeClusterIP,
				Selector: map[string]string{"app": "api"},
			},
		},
	)
}

func TestDiscoverer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := graph.NewGraph()
	d := NewDiscoverer(&Client{Clientset: seedCluster()}, g, testLogger())
	if err := d.Discover(ctx); err != nil {
		t.Fatalf("Discover: %v", err)
	}
	g.CloseAndWait()

	for _, id := range []string{
		"k8s:namespace/prod",
		"k8s:node/node-1",
		"k8s:pod/prod/api-7d9f",
		"k8s:service/prod/api",
	} {
		if _, err := g.GetResource(id); err != nil {
			t.Errorf("missing resource %s: %v", id, err)
		}
	}

	if _, err := g.GetResource("k8s:pod/prod/migrate-job"); err == nil {
		t.Error("completed pods must not enter the topology")
	}

	pod, _ := g.GetResource("k8s:pod/prod/api-7d9f")
	if pod.Properties["Phase"] != "Running" {
		t.Errorf("pod phase = %v", pod.Properties["Phase"])
	}
	wantEdges(t, g, pod.Index, map[string]graph.Kind{
		"k8s:namespace/prod": graph.KindContains,
		"k8s:node/node-1":    graph.KindDependsOn,
	})

	svc, _ := g.GetResource("k8s:service/prod/api")
	wantEdges(t, g, svc.Index, map[string]graph.Kind{
		"k8s:namespace/prod":    graph.KindContains,
		"k8s:pod/prod/api-7d9f": graph.KindRoutesTo,
	})
}

func TestDiscoverer_NoClient(t *testing.T) {
	d := NewDiscoverer(nil, graph.NewGraph(), testLogger())
	if err := d.Discover(context.Background()); err != nil {
		t.Errorf("no configured cluster should be a quiet skip, got %v", err)
	}
}

func wantEdges(t *testing.T, g *graph.Graph, source uint32, want map[string]graph.Kind) {
	t.Helper()
	edges := g.Store.GetOutgoingEdges(source)
	if len(edges) != len(want) {
		t.Fatalf("got %d edges, want %d", len(edges), len(want))
	}
	for _, e := range edges {
		target := g.Store.GetResource(e.TargetID).IDStr()
		kind, ok := want[target]
		if !ok {
			t.Errorf("unexpected edge to %s", target)
			continue
		}
		if e.Kind != kind {
			t.Errorf("edge to %s has kind %s, want %s", target, e.Kind, kind)
		}
	}
}
