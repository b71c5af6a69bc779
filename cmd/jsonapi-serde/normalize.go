package main

import (
	"net/url"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"jsonapi-serde/internal/mapping"
	"jsonapi-serde/mapper"
	"jsonapi-serde/native"
	"jsonapi-serde/serde"
)

type normalizeOptions struct {
	mapping       string
	baseURL       string
	relationships string
	include       bool
}

var relationshipParts = map[string]mapper.RelationshipPart{
	"links": mapper.PartLinks,
	"data":  mapper.PartData,
	"all":   mapper.PartAll,
}

func newNormalizeCommand(c *cli) *cobra.Command {
	var opts normalizeOptions

	cmd := &cobra.Command{
		Use:   "normalize [OPTIONS] [DOCUMENT|-]",
		Short: "Map a JSON:API document onto native records and render it back",
		Long: "Map the primary data of a JSON:API document onto native records and render\n" +
			"the records back. Attributes are converted both ways, so the output shows the\n" +
			"canonical form of every value. Related records missing from the document are\n" +
			"represented by stubs.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.runNormalize(args, opts)
		},
	}

	flags := cmd.Flags()
	addMappingFlag(cmd, flags, &opts.mapping)
	flags.StringVar(&opts.baseURL, "base-url", "", "Base URL of resource links")
	flags.StringVar(&opts.relationships, "relationships", "links", "Relationship members to render (links, data, all)")
	flags.BoolVar(&opts.include, "include", false, "Include related records present in the document")

	return cmd
}

func (opts normalizeOptions) buildOptions() (mapper.BuildOptions, error) {
	part, ok := relationshipParts[opts.relationships]
	if !ok {
		return mapper.BuildOptions{}, errors.Errorf("unknown relationship selection %q", opts.relationships)
	}

	bo := mapper.BuildOptions{
		SelectRelationship: func(*mapper.RelationshipMapping) mapper.RelationshipPart { return part },
	}

	if opts.include {
		bo.IncludeFilter = mapper.IncludeAll
	}

	return bo, nil
}

func (opts normalizeOptions) endpoints() (mapper.EndpointResolver, error) {
	if opts.baseURL == "" {
		return nil, nil
	}

	u, err := url.Parse(opts.baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing base URL")
	}

	return mapper.PathEndpointResolver{Base: u}, nil
}

func (c *cli) runNormalize(args []string, opts normalizeOptions) error {
	bo, err := opts.buildOptions()
	if err != nil {
		return err
	}

	endpoints, err := opts.endpoints()
	if err != nil {
		return err
	}

	s, err := c.loadSchema(opts.mapping, endpoints)
	if err != nil {
		return err
	}

	data, err := c.readDocument(args)
	if err != nil {
		return err
	}

	doc, err := serde.DecodeJSON(data)
	if err != nil {
		return c.renderErrors(err)
	}

	n := &normalizer{schema: s, store: native.NewStore()}
	n.store.Lenient = true

	var out serde.Document

	if isCollection(doc) {
		out, err = n.collection(c.deserializer(s), doc, bo)
	} else {
		out, err = n.singleton(c.deserializer(s), doc, bo)
	}

	if err != nil {
		return c.renderErrors(err)
	}

	return c.render(out)
}

// normalizer creates records in store, where later resources of a document
// find earlier ones.
type normalizer struct {
	schema *mapping.Schema
	store  *native.Store
}

func (n *normalizer) create(repr serde.ResourceRepr) (*mapper.Mapper, any, error) {
	obj, err := n.schema.Context.CreateFromSerde(n.store, repr)
	if err != nil {
		return nil, nil, err
	}

	m, err := n.schema.Context.QueryMapperByObject(obj)
	if err != nil {
		return nil, nil, err
	}

	if err := n.store.Put(m.Native(), obj); err != nil {
		return nil, nil, err
	}

	return m, obj, nil
}

func (n *normalizer) singleton(d *serde.Deserializer, doc any, bo mapper.BuildOptions) (serde.Document, error) {
	repr, err := d.DeserializeSingleton(doc, false)
	if err != nil {
		return nil, err
	}

	if repr.Data == nil {
		return &serde.SingletonDocumentRepr{DocumentCommon: serde.DocumentCommon{Meta: repr.Meta}}, nil
	}

	_, obj, err := n.create(*repr.Data)
	if err != nil {
		return nil, err
	}

	out, err := n.schema.Context.BuildSerdeSingle(obj, bo)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (n *normalizer) collection(d *serde.Deserializer, doc any, bo mapper.BuildOptions) (serde.Document, error) {
	repr, err := d.DeserializeCollection(doc, false)
	if err != nil {
		return nil, err
	}

	if len(repr.Data) == 0 {
		return &serde.CollectionDocumentRepr{Data: []serde.ResourceRepr{}}, nil
	}

	var (
		first *mapper.Mapper
		objs  = make([]any, 0, len(repr.Data))
	)

	for _, res := range repr.Data {
		m, obj, err := n.create(res)
		if err != nil {
			return nil, err
		}

		if first == nil {
			first = m
		} else if m != first {
			return nil, &mapper.InvalidStructureError{
				Message: "collection mixes resource types " + first.Resource().Name() + " and " + m.Resource().Name(),
			}
		}

		objs = append(objs, obj)
	}

	out, err := n.schema.Context.BuildSerdeCollection(first, objs, bo)
	if err != nil {
		return nil, err
	}

	return &out, nil
}
