package k8s

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/informers"

	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

const resyncPeriod = 10 * time.Minute

// Discoverer reads namespaces, nodes, pods and services from the
// cluster and writes them into the topology graph. Listing goes
// through a shared informer cache so repeated discovery puts no load
// on the API server.
type Discoverer struct {
	Client *Client
	Graph  *graph.Graph
	Logger *slog.Logger
}

func NewDiscoverer(client *Client, g *graph.Graph, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		Client: client,
		Graph:  g,
		Logger: logger,
	}
}

func (d *Discoverer) Discover(ctx context.Context) error {
	if d.Client == nil {
		return nil // Graceful skip if no cluster is configured.
	}

	factory := informers.NewSharedInformerFactory(d.Client.Clientset, resyncPeriod)

	nsLister := factory.Core().V1().Namespaces().Lister()
	nodeLister := factory.Core().V1().Nodes().Lister()
	podLister := factory.Core().V1().Pods().Lister()
	svcLister := factory.Core().V1().Services().Lister()

	factory.Start(ctx.Done())

	synced := factory.WaitForCacheSync(ctx.Done())
	for kind, ok := range synced {
		if !ok {
			return fmt.Errorf("failed to sync informer for %v", kind)
		}
	}

	namespaces, err := nsLister.List(labels.Everything())
	if err != nil {
		return fmt.Errorf("failed to list namespaces from cache: %v", err)
	}
	for _, ns := range namespaces {
		d.Graph.AddResource(nsID(ns.Name), ns.Name, "k8s_namespace", "kubernetes", nil)
	}

	nodes, err := nodeLister.List(labels.Everything())
	if err != nil {
		return fmt.Errorf("failed to list nodes from cache: %v", err)
	}
	for _, node := range nodes {
		d.Graph.AddResource(nodeID(node.Name), node.Name, "k8s_node", "kubernetes", map[string]interface{}{
			"KubeletVersion": node.Status.NodeInfo.KubeletVersion,
		})
	}

	pods, err := podLister.List(labels.Everything())
	if err != nil {
		return fmt.Errorf("failed to list pods from cache: %v", err)
	}
	for _, pod := range pods {
		// Completed and failed pods carry no live traffic.
		if pod.Status.Phase == corev1.PodSucceeded || pod.Status.Phase == corev1.PodFailed {
			continue
		}

		id := podID(pod.Namespace, pod.Name)
		d.Graph.AddResource(id, pod.Name, "k8s_pod", "kubernetes", map[string]interface{}{
			"Phase": string(pod.Status.Phase),
		})
		d.Graph.AddDependency(id, nsID(pod.Namespace), graph.KindContains, graph.CategoryConfiguration, 1.0)

		if pod.Spec.NodeName != "" {
			d.Graph.AddDependency(id, nodeID(pod.Spec.NodeName), graph.KindDependsOn, graph.CategoryCompute, 1.0)
		}
	}

	services, err := svcLister.List(labels.Everything())
	if err != nil {
		return fmt.Errorf("failed to list services from cache: %v", err)
	}
	for _, svc := range services {
		id := svcID(svc.Namespace, svc.Name)
		d.Graph.AddResource(id, svc.Name, "k8s_service", "kubernetes", map[string]interface{}{
			"Type": string(svc.Spec.Type),
		})
		d.Graph.AddDependency(id, nsID(svc.Namespace), graph.KindContains, graph.CategoryConfiguration, 1.0)

		if len(svc.Spec.Selector) == 0 {
			continue
		}
		selector := labels.SelectorFromSet(svc.Spec.Selector)

		backends, err := podLister.Pods(svc.Namespace).List(selector)
		if err != nil {
			d.Graph.AddError("k8s:service-backends", err)
			continue
		}
		for _, pod := range backends {
			if pod.Status.Phase != corev1.PodRunning {
				continue
			}
			d.Graph.AddDependency(id, podID(pod.Namespace, pod.Name), graph.KindRoutesTo, graph.CategoryNetwork, 1.0)
		}
	}

	d.Logger.Info("kubernetes discovery complete",
		"namespaces", len(namespaces),
		"nodes", len(nodes),
		"pods", len(pods),
		"services", len(services))
	return nil
}

func nsID(name string) string             { return "k8s:namespace/" + name }
func nodeID(name string) string           { return "k8s:node/" + name }
func podID(namespace, name string) string { return "k8s:pod/" + namespace + "/" + name }
func svcID(namespace, name string) string { return "k8s:service/" + namespace + "/" + name }
